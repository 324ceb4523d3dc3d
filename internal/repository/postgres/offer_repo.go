// internal/repository/postgres/offer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumen-service/internal/domain/offer"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const offerColumns = `
	id, title, description, discount_type, discount_percentage, discount_amount, free_item,
	valid_from, valid_until, is_active, eligibility, applicable_plans,
	max_uses, current_uses, created_at, updated_at
`

type OfferRepository struct {
	db *pgxpool.Pool
}

func NewOfferRepository(db *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{db: db}
}

func scanOffer(row pgx.Row, o *offer.Offer) error {
	return row.Scan(
		&o.ID, &o.Title, &o.Description,
		&o.DiscountType, &o.DiscountPercentage, &o.DiscountAmount, &o.FreeItem,
		&o.ValidFrom, &o.ValidUntil, &o.IsActive, &o.Eligibility, &o.ApplicablePlans,
		&o.MaxUses, &o.CurrentUses, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	query := `
		INSERT INTO special_offers (
			title, description, discount_type, discount_percentage, discount_amount, free_item,
			valid_from, valid_until, is_active, eligibility, applicable_plans, max_uses
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, current_uses, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		o.Title, o.Description, o.DiscountType, o.DiscountPercentage, o.DiscountAmount, o.FreeItem,
		o.ValidFrom, o.ValidUntil, o.IsActive, pq.Array(o.Eligibility), pq.Array(o.ApplicablePlans), o.MaxUses,
	).Scan(&o.ID, &o.CurrentUses, &o.CreatedAt, &o.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	query := `
		UPDATE special_offers SET
			title = $2, description = $3, discount_type = $4,
			discount_percentage = $5, discount_amount = $6, free_item = $7,
			valid_from = $8, valid_until = $9, is_active = $10,
			eligibility = $11, applicable_plans = $12, max_uses = $13,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		o.ID, o.Title, o.Description, o.DiscountType,
		o.DiscountPercentage, o.DiscountAmount, o.FreeItem,
		o.ValidFrom, o.ValidUntil, o.IsActive,
		pq.Array(o.Eligibility), pq.Array(o.ApplicablePlans), o.MaxUses,
	).Scan(&o.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return xerrors.ErrNotFound
		}
		return fmt.Errorf("failed to update offer: %w", err)
	}

	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM special_offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id int64) (*offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM special_offers WHERE id = $1`

	var o offer.Offer
	if err := scanOffer(r.db.QueryRow(ctx, query, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find offer: %w", err)
	}

	return &o, nil
}

// ListActive returns offers currently valid: flagged active, inside the
// window, and with headroom on max_uses. Exhaustion is re-checked here so
// fully used offers drop out of listings without an admin edit.
func (r *OfferRepository) ListActive(ctx context.Context, now time.Time) ([]offer.Offer, error) {
	query := `
		SELECT ` + offerColumns + `
		FROM special_offers
		WHERE is_active = true
		  AND valid_from <= $1 AND valid_until >= $1
		  AND (max_uses IS NULL OR current_uses < max_uses)
		ORDER BY valid_until ASC
	`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active offers: %w", err)
	}
	defer rows.Close()

	return collectOffers(rows)
}

// ListAll returns every offer regardless of validity, for the admin surface.
func (r *OfferRepository) ListAll(ctx context.Context) ([]offer.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM special_offers ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	return collectOffers(rows)
}

// IncrementUses claims one use of the offer. The guard in the WHERE clause
// makes the claim atomic: two concurrent redemptions of the last slot cannot
// both succeed.
func (r *OfferRepository) IncrementUses(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `
		UPDATE special_offers
		SET current_uses = current_uses + 1, updated_at = NOW()
		WHERE id = $1
		  AND is_active = true
		  AND (max_uses IS NULL OR current_uses < max_uses)
	`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment offer uses: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrConflict
	}

	return nil
}

func collectOffers(rows pgx.Rows) ([]offer.Offer, error) {
	offers := []offer.Offer{}
	for rows.Next() {
		var o offer.Offer
		if err := scanOffer(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	return offers, rows.Err()
}
