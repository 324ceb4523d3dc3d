package payment

import (
	"context"
	"testing"

	"lumen-service/internal/domain/payment"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	entries     map[int64]*payment.PaymentHistory
	lastFilters *payment.ListFilters
}

func (r *fakeRepo) FindByID(_ context.Context, id int64) (*payment.PaymentHistory, error) {
	p, ok := r.entries[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID int64, filters *payment.ListFilters) ([]payment.PaymentHistory, int64, error) {
	r.lastFilters = filters
	out := []payment.PaymentHistory{}
	for _, p := range r.entries {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) GetRevenueSummary(_ context.Context) (*payment.RevenueSummary, error) {
	return &payment.RevenueSummary{TotalPayments: 3, TotalRevenue: 159.97}, nil
}

func TestGetScopesToOwner(t *testing.T) {
	repo := &fakeRepo{entries: map[int64]*payment.PaymentHistory{
		10: {ID: 10, UserID: 1, Amount: 59.99},
	}}
	svc := NewService(repo)

	p, err := svc.Get(context.Background(), 1, 10, false)
	require.NoError(t, err)
	assert.Equal(t, 59.99, p.Amount)

	// Another user's entry reads as missing, not forbidden.
	_, err = svc.Get(context.Background(), 2, 10, false)
	assert.ErrorIs(t, err, xerrors.ErrNotFound)

	// Admins can read any entry.
	p, err = svc.Get(context.Background(), 2, 10, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.UserID)
}

func TestListNormalizesPagination(t *testing.T) {
	repo := &fakeRepo{entries: map[int64]*payment.PaymentHistory{}}
	svc := NewService(repo)

	resp, err := svc.List(context.Background(), 1, &payment.ListFilters{Page: -1, PageSize: 9000})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.PageSize)
	assert.Equal(t, 1, repo.lastFilters.Page)
	assert.Equal(t, 20, repo.lastFilters.PageSize)
}
