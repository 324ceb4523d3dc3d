package offer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"lumen-service/internal/catalog"
	"lumen-service/internal/domain/offer"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct{}

func (fakeRunner) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type fakeRepo struct {
	offers map[int64]*offer.Offer
	nextID int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{offers: map[int64]*offer.Offer{}}
}

func (r *fakeRepo) Create(_ context.Context, o *offer.Offer) error {
	r.nextID++
	o.ID = r.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	clone := *o
	r.offers[o.ID] = &clone
	return nil
}

func (r *fakeRepo) Update(_ context.Context, o *offer.Offer) error {
	if _, ok := r.offers[o.ID]; !ok {
		return xerrors.ErrNotFound
	}
	clone := *o
	r.offers[o.ID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.offers[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(r.offers, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*offer.Offer, error) {
	o, ok := r.offers[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (r *fakeRepo) ListActive(_ context.Context, now time.Time) ([]offer.Offer, error) {
	out := []offer.Offer{}
	for _, o := range r.offers {
		if o.Valid(now) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListAll(_ context.Context) ([]offer.Offer, error) {
	out := []offer.Offer{}
	for _, o := range r.offers {
		out = append(out, *o)
	}
	return out, nil
}

func (r *fakeRepo) IncrementUses(_ context.Context, _ pgx.Tx, id int64) error {
	o, ok := r.offers[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	if o.MaxUses.Valid && o.CurrentUses >= int(o.MaxUses.Int32) {
		return xerrors.ErrConflict
	}
	o.CurrentUses++
	return nil
}

func newTestService(repo *fakeRepo, now time.Time) *Service {
	svc := NewService(fakeRunner{}, repo, catalog.Default(), zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func percentageOffer(now time.Time, pct float64) *offer.Offer {
	return &offer.Offer{
		Title:              "Spring promo",
		DiscountType:       offer.DiscountTypePercentage,
		DiscountPercentage: sql.NullFloat64{Float64: pct, Valid: true},
		ValidFrom:          now.AddDate(0, 0, -1),
		ValidUntil:         now.AddDate(0, 1, 0),
		IsActive:           true,
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	o := percentageOffer(now, 50)
	require.NoError(t, repo.Create(context.Background(), o))

	svc := newTestService(repo, now)
	result, err := svc.Apply(context.Background(), o.ID, &offer.ApplyRequest{PlanID: "basic-fiber"})
	require.NoError(t, err)

	assert.Equal(t, 39.99, result.OriginalPrice)
	assert.InDelta(t, 19.995, result.DiscountedPrice, 1e-9)
	assert.Equal(t, 1, repo.offers[o.ID].CurrentUses)
}

func TestApplyExpiredOffer(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	o := percentageOffer(now, 50)
	o.ValidUntil = now.AddDate(0, 0, -1)
	require.NoError(t, repo.Create(context.Background(), o))

	svc := newTestService(repo, now)
	_, err := svc.Apply(context.Background(), o.ID, &offer.ApplyRequest{PlanID: "basic-fiber"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
	assert.Equal(t, 0, repo.offers[o.ID].CurrentUses)
}

func TestApplyExhaustedOffer(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	o := percentageOffer(now, 50)
	o.MaxUses = sql.NullInt32{Int32: 1, Valid: true}
	require.NoError(t, repo.Create(context.Background(), o))

	svc := newTestService(repo, now)
	_, err := svc.Apply(context.Background(), o.ID, &offer.ApplyRequest{PlanID: "basic-fiber"})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), o.ID, &offer.ApplyRequest{PlanID: "basic-fiber"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestApplyPlanOutsideScope(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()
	o := percentageOffer(now, 50)
	o.ApplicablePlans = []string{"premium-fiber"}
	require.NoError(t, repo.Create(context.Background(), o))

	svc := newTestService(repo, now)
	_, err := svc.Apply(context.Background(), o.ID, &offer.ApplyRequest{PlanID: "basic-copper"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCreateValidatesDiscount(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestService(newFakeRepo(), now)

	valid := 20.0
	_, err := svc.Create(context.Background(), &offer.CreateRequest{
		Title:              "ok",
		DiscountType:       offer.DiscountTypePercentage,
		DiscountPercentage: &valid,
		ValidFrom:          now,
		ValidUntil:         now.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	over := 150.0
	_, err = svc.Create(context.Background(), &offer.CreateRequest{
		Title:              "bad percentage",
		DiscountType:       offer.DiscountTypePercentage,
		DiscountPercentage: &over,
		ValidFrom:          now,
		ValidUntil:         now.AddDate(0, 1, 0),
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = svc.Create(context.Background(), &offer.CreateRequest{
		Title:        "missing free item",
		DiscountType: offer.DiscountTypeFreeItem,
		ValidFrom:    now,
		ValidUntil:   now.AddDate(0, 1, 0),
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = svc.Create(context.Background(), &offer.CreateRequest{
		Title:              "inverted window",
		DiscountType:       offer.DiscountTypePercentage,
		DiscountPercentage: &valid,
		ValidFrom:          now,
		ValidUntil:         now.AddDate(0, 0, -1),
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestListActiveFiltersInvalid(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	repo := newFakeRepo()

	live := percentageOffer(now, 10)
	require.NoError(t, repo.Create(context.Background(), live))
	dead := percentageOffer(now, 10)
	dead.ValidUntil = now.AddDate(0, 0, -1)
	require.NoError(t, repo.Create(context.Background(), dead))

	svc := newTestService(repo, now)
	offers, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, offers, 1)
	assert.Equal(t, live.ID, offers[0].ID)
}
