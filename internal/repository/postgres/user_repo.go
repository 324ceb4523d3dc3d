// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lumen-service/internal/domain/user"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, email, password_hash, full_name, role,
	current_plan, subscription_status,
	avg_download, avg_upload, peak_usage, device_count,
	created_at, updated_at
`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.CurrentPlan, &u.SubscriptionStatus,
		&u.UsageData.AverageDownload, &u.UsageData.AverageUpload,
		&u.UsageData.PeakUsage, &u.UsageData.DeviceCount,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (email, password_hash, full_name, role, subscription_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		u.Email, u.PasswordHash, u.FullName, u.Role, u.SubscriptionStatus,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, email))
}

// UpdateSubscriptionCacheWithTx refreshes the denormalized plan fields inside
// the caller's transaction. Never called outside a lifecycle transition.
func (r *UserRepository) UpdateSubscriptionCacheWithTx(ctx context.Context, tx pgx.Tx, userID int64, currentPlan *string, status user.SubscriptionStatus) error {
	query := `
		UPDATE users
		SET current_plan = $1, subscription_status = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := tx.Exec(ctx, query, currentPlan, status, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to update subscription cache: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}

// UpdateUsageSummaryWithTx writes the trailing-30-day aggregates inside the
// caller's transaction.
func (r *UserRepository) UpdateUsageSummaryWithTx(ctx context.Context, tx pgx.Tx, userID int64, summary user.UsageSummary) error {
	query := `
		UPDATE users
		SET avg_download = $1, avg_upload = $2, peak_usage = $3, device_count = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := tx.Exec(
		ctx, query,
		summary.AverageDownload, summary.AverageUpload, summary.PeakUsage, summary.DeviceCount,
		time.Now(), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update usage summary: %w", err)
	}

	if result.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
