// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"lumen-service/internal/domain/subscription"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubscriptionRepository persists subscription rows. The schema carries a
// partial unique index on (user_id) WHERE status = 'active', so the
// one-active-subscription invariant holds even under concurrent subscribes;
// violations surface as ErrConflict.
type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	id, user_id, plan_id, plan_name, plan_type, price, download_speed, upload_speed,
	status, start_date, end_date, next_billing_date, billing_cycle, auto_renew,
	created_at, updated_at
`

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var s subscription.Subscription
	err := row.Scan(
		&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.PlanType, &s.Price, &s.DownloadSpeed, &s.UploadSpeed,
		&s.Status, &s.StartDate, &s.EndDate, &s.NextBillingDate, &s.BillingCycle, &s.AutoRenew,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return &s, nil
}

// CreateWithTx inserts a subscription row within a transaction.
func (r *SubscriptionRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, sub *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions (
			user_id, plan_id, plan_name, plan_type, price, download_speed, upload_speed,
			status, start_date, end_date, next_billing_date, billing_cycle, auto_renew
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		sub.UserID, sub.PlanID, sub.PlanName, sub.PlanType, sub.Price, sub.DownloadSpeed, sub.UploadSpeed,
		sub.Status, sub.StartDate, sub.EndDate, sub.NextBillingDate, sub.BillingCycle, sub.AutoRenew,
	).Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE id = $1`, subscriptionColumns)
	return scanSubscription(r.db.QueryRow(ctx, query, id))
}

// FindActiveByUser returns the authoritative active subscription for a user.
func (r *SubscriptionRepository) FindActiveByUser(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`, subscriptionColumns)
	return scanSubscription(r.db.QueryRow(ctx, query, userID))
}

// ListByUserForUpdate locks every subscription row for the user, newest
// first. Transitions resolve the effective current row over the whole set,
// so the lock has to cover scheduled and expired rows too, not just the
// stored-active one; it also keeps two concurrent transitions from reading
// the same predecessor.
func (r *SubscriptionRepository) ListByUserForUpdate(ctx context.Context, tx pgx.Tx, userID int64) ([]subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		FOR UPDATE
	`, subscriptionColumns)

	rows, err := tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// UpdateStatusWithTx transitions a row's stored status and end date within a
// transaction. A nil endDate clears the column.
func (r *SubscriptionRepository) UpdateStatusWithTx(ctx context.Context, tx pgx.Tx, id int64, status subscription.Status, endDate *time.Time, autoRenew bool) error {
	query := `
		UPDATE subscriptions
		SET status = $1, end_date = $2, auto_renew = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := tx.Exec(ctx, query, status, endDate, autoRenew, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// SetEndDateWithTx stamps an end date without touching status (deferred
// downgrades keep the predecessor active until the boundary passes).
func (r *SubscriptionRepository) SetEndDateWithTx(ctx context.Context, tx pgx.Tx, id int64, endDate time.Time) error {
	query := `UPDATE subscriptions SET end_date = $1, updated_at = $2 WHERE id = $3`

	result, err := tx.Exec(ctx, query, endDate, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set subscription end date: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// ListByUser returns the full subscription history, newest first.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64) ([]subscription.Subscription, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, subscriptionColumns)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// List retrieves subscriptions with admin filters.
func (r *SubscriptionRepository) List(ctx context.Context, filters *subscription.ListFilters) ([]subscription.Subscription, int64, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	argPos := 1

	if filters.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argPos))
		args = append(args, *filters.UserID)
		argPos++
	}

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM subscriptions WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM subscriptions
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, subscriptionColumns, whereClause, argPos, argPos+1)

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs, err := collectSubscriptions(rows)
	if err != nil {
		return nil, 0, err
	}

	return subs, total, nil
}

func collectSubscriptions(rows pgx.Rows) ([]subscription.Subscription, error) {
	subs := []subscription.Subscription{}
	for rows.Next() {
		var s subscription.Subscription
		err := rows.Scan(
			&s.ID, &s.UserID, &s.PlanID, &s.PlanName, &s.PlanType, &s.Price, &s.DownloadSpeed, &s.UploadSpeed,
			&s.Status, &s.StartDate, &s.EndDate, &s.NextBillingDate, &s.BillingCycle, &s.AutoRenew,
			&s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
