// internal/service/usage/usage_service.go
package usage

import (
	"context"
	"errors"
	"time"

	"lumen-service/internal/domain/subscription"
	"lumen-service/internal/domain/usage"
	"lumen-service/internal/domain/user"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type Repo interface {
	UpsertWithTx(ctx context.Context, tx pgx.Tx, rec *usage.Record) error
	RollingAveragesWithTx(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) (*usage.RollingAverages, error)
	ListByUser(ctx context.Context, userID int64, days int) ([]usage.Record, error)
	Summary(ctx context.Context, userID int64, days int) (*usage.Summary, error)
}

type UserRepo interface {
	UpdateUsageSummaryWithTx(ctx context.Context, tx pgx.Tx, userID int64, summary user.UsageSummary) error
}

type SubscriptionRepo interface {
	FindActiveByUser(ctx context.Context, userID int64) (*subscription.Subscription, error)
}

type Service struct {
	runner TxRunner
	repo   Repo
	users  UserRepo
	subs   SubscriptionRepo
	logger *zap.Logger

	now func() time.Time
}

func NewService(runner TxRunner, repo Repo, users UserRepo, subs SubscriptionRepo, logger *zap.Logger) *Service {
	return &Service{
		runner: runner,
		repo:   repo,
		users:  users,
		subs:   subs,
		logger: logger,
		now:    time.Now,
	}
}

// Report upserts the daily usage sample and recomputes the trailing-30-day
// averages onto the user row in the same transaction, so the summary on the
// user can never drift from the records it is derived from.
func (s *Service) Report(ctx context.Context, userID int64, req *usage.ReportRequest) (*usage.Record, error) {
	now := s.now()

	date := now.Truncate(24 * time.Hour)
	if req.Date != nil {
		if req.Date.After(now) {
			return nil, xerrors.ErrInvalidInput
		}
		date = req.Date.Truncate(24 * time.Hour)
	}

	rec := &usage.Record{
		UserID:           userID,
		Date:             date,
		DownloadUsage:    req.DownloadUsage,
		UploadUsage:      req.UploadUsage,
		TotalUsage:       req.DownloadUsage + req.UploadUsage,
		DeviceCount:      req.DeviceCount,
		ActiveHours:      req.ActiveHours,
		UsagePatterns:    req.UsagePatterns,
		ApplicationUsage: req.ApplicationUsage,
	}

	if sub, err := s.subs.FindActiveByUser(ctx, userID); err == nil {
		rec.SubscriptionID.Int64 = sub.ID
		rec.SubscriptionID.Valid = true
	} else if !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	err := s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.repo.UpsertWithTx(ctx, tx, rec); err != nil {
			return err
		}

		avg, err := s.repo.RollingAveragesWithTx(ctx, tx, userID, now)
		if err != nil {
			return err
		}

		return s.users.UpdateUsageSummaryWithTx(ctx, tx, userID, user.UsageSummary{
			AverageDownload: avg.AverageDownload,
			AverageUpload:   avg.AverageUpload,
			PeakUsage:       avg.PeakUsage,
			DeviceCount:     avg.DeviceCount,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("usage reported",
		zap.Int64("user_id", userID),
		zap.Time("date", rec.Date),
		zap.Float64("total", rec.TotalUsage),
	)

	return rec, nil
}

// List returns the last `days` of records, defaulting to 30 and capped at 90.
func (s *Service) List(ctx context.Context, userID int64, days int) ([]usage.Record, error) {
	if days < 1 {
		days = 30
	}
	if days > 90 {
		days = 90
	}
	return s.repo.ListByUser(ctx, userID, days)
}

func (s *Service) Summary(ctx context.Context, userID int64, days int) (*usage.Summary, error) {
	if days < 1 {
		days = 30
	}
	if days > 90 {
		days = 90
	}
	return s.repo.Summary(ctx, userID, days)
}
