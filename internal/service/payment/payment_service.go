// internal/service/payment/payment_service.go
package payment

import (
	"context"

	"lumen-service/internal/domain/payment"
	xerrors "lumen-service/internal/pkg/errors"
)

type Repo interface {
	FindByID(ctx context.Context, id int64) (*payment.PaymentHistory, error)
	ListByUser(ctx context.Context, userID int64, filters *payment.ListFilters) ([]payment.PaymentHistory, int64, error)
	GetRevenueSummary(ctx context.Context) (*payment.RevenueSummary, error)
}

// Service is the read surface over the billing ledger. Writes happen only
// inside lifecycle transactions, never here.
type Service struct {
	repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, userID int64, filters *payment.ListFilters) (*payment.ListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 100 {
		filters.PageSize = 20
	}

	payments, total, err := s.repo.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, err
	}

	return &payment.ListResponse{
		Payments: payments,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	}, nil
}

// Get returns a single ledger entry, scoped to the requesting user unless
// the caller is an admin.
func (s *Service) Get(ctx context.Context, userID, id int64, isAdmin bool) (*payment.PaymentHistory, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && p.UserID != userID {
		return nil, xerrors.ErrNotFound
	}
	return p, nil
}

func (s *Service) RevenueSummary(ctx context.Context) (*payment.RevenueSummary, error) {
	return s.repo.GetRevenueSummary(ctx)
}
