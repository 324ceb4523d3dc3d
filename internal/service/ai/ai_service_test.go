package ai

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"lumen-service/internal/catalog"
	"lumen-service/internal/domain/user"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeUserRepo struct {
	users map[int64]*user.User
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return u, nil
}

func testUser(id int64) *user.User {
	return &user.User{
		ID:                 id,
		Email:              "jamie@example.com",
		FullName:           "Jamie Ortega",
		Role:               user.RoleUser,
		CurrentPlan:        sql.NullString{String: "basic-fiber", Valid: true},
		SubscriptionStatus: user.SubscriptionStatusActive,
		UsageData: user.UsageSummary{
			AverageDownload: 120,
			AverageUpload:   30,
			PeakUsage:       200,
			DeviceCount:     4,
		},
	}
}

func newSvc(providerURL string, users *fakeUserRepo) *Service {
	client := NewClient(ClientConfig{BaseURL: providerURL, APIKey: "k", Model: "m"})
	return NewService(client, users, catalog.Default(), nil, zap.NewNop())
}

func TestRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"{\"recommended_plan\":\"premium-fiber\",\"reasons\":[\"heavy evening usage\"],\"confidence\":0.9}"}}]}`))
	}))
	defer srv.Close()

	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := newSvc(srv.URL, repo)

	rec, err := svc.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "premium-fiber", rec.RecommendedPlan)
	assert.Equal(t, 0.9, rec.Confidence)
	assert.False(t, rec.Degraded)
}

func TestRecommendFallsBackWhenProviderDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := newSvc(srv.URL, repo)

	rec, err := svc.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, rec.Degraded)
	assert.NotEmpty(t, rec.DegradedReason)
	// 120 GB average download over 4 devices lands on the mid tier.
	assert.Equal(t, "basic-fiber", rec.RecommendedPlan)
	assert.Equal(t, 0.5, rec.Confidence)
}

func TestRecommendFallsBackOnUnknownPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"{\"recommended_plan\":\"gigabit-dsl\",\"reasons\":[],\"confidence\":0.9}"}}]}`))
	}))
	defer srv.Close()

	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := newSvc(srv.URL, repo)

	rec, err := svc.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, rec.Degraded)
}

func TestRecommendUnknownUser(t *testing.T) {
	repo := &fakeUserRepo{users: map[int64]*user.User{}}
	svc := newSvc("http://127.0.0.1:0", repo)

	_, err := svc.Recommend(context.Background(), 42)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestChurnClampsRisk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":
			"{\"risk\":1.7,\"factors\":[\"declining usage\"]}"}}]}`))
	}))
	defer srv.Close()

	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := newSvc(srv.URL, repo)

	pred, err := svc.Churn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pred.Risk)
	assert.Equal(t, "high", pred.Level)
	assert.False(t, pred.Degraded)
}

func TestChurnFallback(t *testing.T) {
	u := testUser(1)
	u.SubscriptionStatus = user.SubscriptionStatusInactive
	repo := &fakeUserRepo{users: map[int64]*user.User{1: u}}
	// Unconfigured client, every call degrades.
	svc := NewService(NewClient(ClientConfig{}), repo, catalog.Default(), nil, zap.NewNop())

	pred, err := svc.Churn(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, pred.Degraded)
	assert.Equal(t, 0.8, pred.Risk)
	assert.Equal(t, "high", pred.Level)
}

func TestNotificationCopyFallback(t *testing.T) {
	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := NewService(NewClient(ClientConfig{}), repo, catalog.Default(), nil, zap.NewNop())

	msg, err := svc.NotificationCopy(context.Background(), 1, "cancelled")
	require.NoError(t, err)
	assert.True(t, msg.Degraded)
	assert.Equal(t, "Sorry to see you go", msg.Subject)
	assert.Contains(t, msg.Body, "Jamie Ortega")
}

func TestBatchToleratesFailures(t *testing.T) {
	repo := &fakeUserRepo{users: map[int64]*user.User{1: testUser(1)}}
	svc := NewService(NewClient(ClientConfig{}), repo, catalog.Default(), nil, zap.NewNop())

	results := svc.Batch(context.Background(), []int64{1, 99})
	require.Len(t, results, 2)

	assert.Equal(t, int64(1), results[0].UserID)
	require.NotNil(t, results[0].Recommendation)
	assert.True(t, results[0].Recommendation.Degraded)
	assert.Empty(t, results[0].Error)

	assert.Equal(t, int64(99), results[1].UserID)
	assert.Nil(t, results[1].Recommendation)
	assert.NotEmpty(t, results[1].Error)
}
