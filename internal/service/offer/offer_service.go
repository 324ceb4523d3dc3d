// internal/service/offer/offer_service.go
package offer

import (
	"context"
	"database/sql"
	"time"

	"lumen-service/internal/catalog"
	"lumen-service/internal/domain/offer"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TxRunner interface {
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type Repo interface {
	Create(ctx context.Context, o *offer.Offer) error
	Update(ctx context.Context, o *offer.Offer) error
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*offer.Offer, error)
	ListActive(ctx context.Context, now time.Time) ([]offer.Offer, error)
	ListAll(ctx context.Context) ([]offer.Offer, error)
	IncrementUses(ctx context.Context, tx pgx.Tx, id int64) error
}

type Service struct {
	runner TxRunner
	repo   Repo
	plans  *catalog.Catalog
	logger *zap.Logger

	now func() time.Time
}

func NewService(runner TxRunner, repo Repo, plans *catalog.Catalog, logger *zap.Logger) *Service {
	return &Service{
		runner: runner,
		repo:   repo,
		plans:  plans,
		logger: logger,
		now:    time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req *offer.CreateRequest) (*offer.Offer, error) {
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, xerrors.ErrInvalidInput
	}
	if err := validateDiscount(req.DiscountType, req.DiscountPercentage, req.DiscountAmount, req.FreeItem); err != nil {
		return nil, err
	}

	o := &offer.Offer{
		Title:           req.Title,
		DiscountType:    req.DiscountType,
		ValidFrom:       req.ValidFrom,
		ValidUntil:      req.ValidUntil,
		IsActive:        true,
		Eligibility:     req.Eligibility,
		ApplicablePlans: req.ApplicablePlans,
	}
	if req.Description != "" {
		o.Description = sql.NullString{String: req.Description, Valid: true}
	}
	if req.DiscountPercentage != nil {
		o.DiscountPercentage = sql.NullFloat64{Float64: *req.DiscountPercentage, Valid: true}
	}
	if req.DiscountAmount != nil {
		o.DiscountAmount = sql.NullFloat64{Float64: *req.DiscountAmount, Valid: true}
	}
	if req.FreeItem != "" {
		o.FreeItem = sql.NullString{String: req.FreeItem, Valid: true}
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if req.MaxUses != nil {
		o.MaxUses = sql.NullInt32{Int32: int32(*req.MaxUses), Valid: true}
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("offer created", zap.Int64("offer_id", o.ID), zap.String("title", o.Title))
	return o, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *offer.UpdateRequest) (*offer.Offer, error) {
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		o.Title = *req.Title
	}
	if req.Description != nil {
		o.Description = sql.NullString{String: *req.Description, Valid: *req.Description != ""}
	}
	if req.DiscountPercentage != nil {
		o.DiscountPercentage = sql.NullFloat64{Float64: *req.DiscountPercentage, Valid: true}
	}
	if req.DiscountAmount != nil {
		o.DiscountAmount = sql.NullFloat64{Float64: *req.DiscountAmount, Valid: true}
	}
	if req.ValidFrom != nil {
		o.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		o.ValidUntil = *req.ValidUntil
	}
	if req.IsActive != nil {
		o.IsActive = *req.IsActive
	}
	if req.Eligibility != nil {
		o.Eligibility = req.Eligibility
	}
	if req.ApplicablePlans != nil {
		o.ApplicablePlans = req.ApplicablePlans
	}
	if req.MaxUses != nil {
		o.MaxUses = sql.NullInt32{Int32: int32(*req.MaxUses), Valid: true}
	}

	if !o.ValidUntil.After(o.ValidFrom) {
		return nil, xerrors.ErrInvalidInput
	}

	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("offer updated", zap.Int64("offer_id", o.ID))
	return o, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("offer deleted", zap.Int64("offer_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*offer.Offer, error) {
	return s.repo.FindByID(ctx, id)
}

// ListActive returns currently valid offers only.
func (s *Service) ListActive(ctx context.Context) ([]offer.Offer, error) {
	return s.repo.ListActive(ctx, s.now())
}

func (s *Service) ListAll(ctx context.Context) ([]offer.Offer, error) {
	return s.repo.ListAll(ctx)
}

// Apply redeems the offer against a plan and returns the discounted price.
// The use counter is claimed atomically; a concurrent redemption of the last
// slot fails with ErrConflict instead of overshooting max_uses.
func (s *Service) Apply(ctx context.Context, id int64, req *offer.ApplyRequest) (*offer.ApplyResult, error) {
	plan, err := s.plans.FindByID(req.PlanID)
	if err != nil {
		return nil, err
	}

	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !o.Valid(now) {
		return nil, xerrors.ErrInvalidInput
	}
	if !o.AppliesTo(plan.ID) {
		return nil, xerrors.ErrInvalidInput
	}

	err = s.runner.WithinTx(ctx, func(tx pgx.Tx) error {
		return s.repo.IncrementUses(ctx, tx, o.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("offer applied",
		zap.Int64("offer_id", o.ID),
		zap.String("plan_id", plan.ID),
	)

	result := &offer.ApplyResult{
		OfferID:         o.ID,
		PlanID:          plan.ID,
		OriginalPrice:   plan.Price,
		DiscountedPrice: o.Discount(plan.Price),
	}
	if o.FreeItem.Valid {
		result.FreeItem = o.FreeItem.String
	}
	return result, nil
}

func validateDiscount(dtype offer.DiscountType, pct, amount *float64, freeItem string) error {
	switch dtype {
	case offer.DiscountTypePercentage:
		if pct == nil || *pct <= 0 || *pct > 100 {
			return xerrors.ErrInvalidInput
		}
	case offer.DiscountTypeFixedAmount:
		if amount == nil || *amount <= 0 {
			return xerrors.ErrInvalidInput
		}
	case offer.DiscountTypeFreeItem:
		if freeItem == "" {
			return xerrors.ErrInvalidInput
		}
	default:
		return xerrors.ErrInvalidInput
	}
	return nil
}
