// internal/service/ai/ai_service.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"lumen-service/internal/catalog"
	"lumen-service/internal/domain/ai"
	"lumen-service/internal/domain/user"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = time.Hour

type UserRepo interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// Service wraps the generative provider. Provider failures never surface as
// errors: the static fallback answers instead, marked Degraded so callers
// can tell the difference. Successful provider answers are cached in redis
// for an hour; degraded answers are never cached.
type Service struct {
	client *Client
	users  UserRepo
	plans  *catalog.Catalog
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(client *Client, users UserRepo, plans *catalog.Catalog, rdb *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		users:  users,
		plans:  plans,
		rdb:    rdb,
		logger: logger,
	}
}

// Recommend asks the provider for a plan suggestion based on the user's
// usage summary and the live catalog.
func (s *Service) Recommend(ctx context.Context, userID int64) (*ai.Recommendation, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var cached ai.Recommendation
	if s.cacheGet(ctx, cacheKey(userID, "recommendation"), &cached) {
		return &cached, nil
	}

	text, err := s.client.Complete(ctx, recommendationSystemPrompt, s.recommendationPrompt(u))
	if err != nil {
		s.logger.Warn("recommendation provider call failed, using fallback",
			zap.Int64("user_id", userID), zap.Error(err))
		return fallbackRecommendation(u, "provider unavailable"), nil
	}

	var rec ai.Recommendation
	if err := ExtractJSON(text, &rec); err != nil {
		s.logger.Warn("recommendation extraction failed, using fallback",
			zap.Int64("user_id", userID), zap.Error(err))
		return fallbackRecommendation(u, "unparseable provider response"), nil
	}

	if _, err := s.plans.FindByID(rec.RecommendedPlan); err != nil {
		s.logger.Warn("provider recommended unknown plan, using fallback",
			zap.Int64("user_id", userID), zap.String("plan_id", rec.RecommendedPlan))
		return fallbackRecommendation(u, "provider recommended an unknown plan"), nil
	}

	rec.Degraded = false
	rec.DegradedReason = ""
	s.cacheSet(ctx, cacheKey(userID, "recommendation"), &rec)
	return &rec, nil
}

// Churn asks the provider for a churn-risk estimate.
func (s *Service) Churn(ctx context.Context, userID int64) (*ai.ChurnPrediction, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var cached ai.ChurnPrediction
	if s.cacheGet(ctx, cacheKey(userID, "churn"), &cached) {
		return &cached, nil
	}

	text, err := s.client.Complete(ctx, churnSystemPrompt, s.churnPrompt(u))
	if err != nil {
		s.logger.Warn("churn provider call failed, using fallback",
			zap.Int64("user_id", userID), zap.Error(err))
		return fallbackChurn(u, "provider unavailable"), nil
	}

	var pred ai.ChurnPrediction
	if err := ExtractJSON(text, &pred); err != nil {
		s.logger.Warn("churn extraction failed, using fallback",
			zap.Int64("user_id", userID), zap.Error(err))
		return fallbackChurn(u, "unparseable provider response"), nil
	}

	if pred.Risk < 0 {
		pred.Risk = 0
	}
	if pred.Risk > 1 {
		pred.Risk = 1
	}
	if pred.Level == "" {
		pred.Level = churnLevel(pred.Risk)
	}

	pred.Degraded = false
	pred.DegradedReason = ""
	s.cacheSet(ctx, cacheKey(userID, "churn"), &pred)
	return &pred, nil
}

// NotificationCopy generates subject/body copy for a lifecycle event.
// Event copy is not cached: the same event can carry different context over
// time and the fallback copy is cheap.
func (s *Service) NotificationCopy(ctx context.Context, userID int64, event string) (*ai.NotificationCopy, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	text, err := s.client.Complete(ctx, notificationSystemPrompt, s.notificationPrompt(u, event))
	if err != nil {
		return fallbackNotification(u, event, "provider unavailable"), nil
	}

	var msg ai.NotificationCopy
	if err := ExtractJSON(text, &msg); err != nil {
		return fallbackNotification(u, event, "unparseable provider response"), nil
	}
	if msg.Subject == "" || msg.Body == "" {
		return fallbackNotification(u, event, "incomplete provider response"), nil
	}

	return &msg, nil
}

// Batch produces per-user recommendations; one user's failure does not fail
// the batch.
func (s *Service) Batch(ctx context.Context, userIDs []int64) []ai.BatchResult {
	results := make([]ai.BatchResult, 0, len(userIDs))
	for _, id := range userIDs {
		rec, err := s.Recommend(ctx, id)
		if err != nil {
			results = append(results, ai.BatchResult{UserID: id, Error: "user lookup failed"})
			continue
		}
		results = append(results, ai.BatchResult{UserID: id, Recommendation: rec})
	}
	return results
}

const (
	recommendationSystemPrompt = `You are a broadband plan advisor. Respond with a single JSON object:
{"recommended_plan": "<plan id>", "reasons": ["..."], "confidence": 0.0, "estimated_saving": 0.0}`

	churnSystemPrompt = `You are a churn analyst. Respond with a single JSON object:
{"risk": 0.0, "level": "low|medium|high", "factors": ["..."]}`

	notificationSystemPrompt = `You write short customer notifications. Respond with a single JSON object:
{"subject": "...", "body": "..."}`
)

func (s *Service) recommendationPrompt(u *user.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available plans:\n")
	for _, p := range s.plans.List() {
		fmt.Fprintf(&b, "- %s: %s, %.2f/mo, %d/%d Mbps\n", p.ID, p.Name, p.Price, p.DownloadSpeed, p.UploadSpeed)
	}
	fmt.Fprintf(&b, "Current plan: %s\n", currentPlan(u))
	fmt.Fprintf(&b, "Usage (30-day): avg download %.1f GB, avg upload %.1f GB, peak %.1f GB, %d devices\n",
		u.UsageData.AverageDownload, u.UsageData.AverageUpload, u.UsageData.PeakUsage, u.UsageData.DeviceCount)
	return b.String()
}

func (s *Service) churnPrompt(u *user.User) string {
	return fmt.Sprintf(
		"Subscription status: %s. Current plan: %s. Usage (30-day): avg download %.1f GB, avg upload %.1f GB, %d devices.",
		u.SubscriptionStatus, currentPlan(u),
		u.UsageData.AverageDownload, u.UsageData.AverageUpload, u.UsageData.DeviceCount,
	)
}

func (s *Service) notificationPrompt(u *user.User, event string) string {
	return fmt.Sprintf("Customer name: %s. Event: %s. Current plan: %s.", u.FullName, event, currentPlan(u))
}

func currentPlan(u *user.User) string {
	if u.CurrentPlan.Valid {
		return u.CurrentPlan.String
	}
	return "none"
}

func cacheKey(userID int64, operation string) string {
	return fmt.Sprintf("ai:%s:%d", operation, userID)
}

func (s *Service) cacheGet(ctx context.Context, key string, v interface{}) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (s *Service) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache ai response", zap.String("key", key), zap.Error(err))
	}
}
