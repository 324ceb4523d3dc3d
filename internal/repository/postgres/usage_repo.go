// internal/repository/postgres/usage_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"lumen-service/internal/domain/usage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

// UpsertWithTx writes the daily record for (user_id, date), replacing the
// existing sample if the day was already reported.
func (r *UsageRepository) UpsertWithTx(ctx context.Context, tx pgx.Tx, rec *usage.Record) error {
	query := `
		INSERT INTO usage_data (
			user_id, subscription_id, date, download_usage, upload_usage, total_usage,
			device_count, active_hours, usage_patterns, application_usage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, date) DO UPDATE SET
			subscription_id = EXCLUDED.subscription_id,
			download_usage = EXCLUDED.download_usage,
			upload_usage = EXCLUDED.upload_usage,
			total_usage = EXCLUDED.total_usage,
			device_count = EXCLUDED.device_count,
			active_hours = EXCLUDED.active_hours,
			usage_patterns = EXCLUDED.usage_patterns,
			application_usage = EXCLUDED.application_usage,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := tx.QueryRow(
		ctx, query,
		rec.UserID, rec.SubscriptionID, rec.Date, rec.DownloadUsage, rec.UploadUsage, rec.TotalUsage,
		rec.DeviceCount, rec.ActiveHours, rec.UsagePatterns, pq.Array(rec.ApplicationUsage),
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert usage record: %w", err)
	}

	return nil
}

// RollingAveragesWithTx computes the trailing-30-day aggregates inside the
// caller's transaction so the user cache never drifts from the rows it
// summarizes.
func (r *UsageRepository) RollingAveragesWithTx(ctx context.Context, tx pgx.Tx, userID int64, now time.Time) (*usage.RollingAverages, error) {
	query := `
		SELECT
			COALESCE(AVG(download_usage), 0),
			COALESCE(AVG(upload_usage), 0),
			COALESCE(MAX(total_usage), 0),
			COALESCE(MAX(device_count), 0)
		FROM usage_data
		WHERE user_id = $1 AND date >= $2
	`

	var avg usage.RollingAverages
	err := tx.QueryRow(ctx, query, userID, now.AddDate(0, 0, -30)).Scan(
		&avg.AverageDownload, &avg.AverageUpload, &avg.PeakUsage, &avg.DeviceCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rolling averages: %w", err)
	}

	return &avg, nil
}

// ListByUser returns the last `days` of usage records, newest first.
func (r *UsageRepository) ListByUser(ctx context.Context, userID int64, days int) ([]usage.Record, error) {
	query := `
		SELECT id, user_id, subscription_id, date, download_usage, upload_usage, total_usage,
		       device_count, active_hours, usage_patterns, application_usage, created_at, updated_at
		FROM usage_data
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, userID, time.Now().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	defer rows.Close()

	records := []usage.Record{}
	for rows.Next() {
		var rec usage.Record
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.SubscriptionID, &rec.Date,
			&rec.DownloadUsage, &rec.UploadUsage, &rec.TotalUsage,
			&rec.DeviceCount, &rec.ActiveHours, &rec.UsagePatterns, &rec.ApplicationUsage,
			&rec.CreatedAt, &rec.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Summary aggregates totals over the last `days` for the summary endpoint.
func (r *UsageRepository) Summary(ctx context.Context, userID int64, days int) (*usage.Summary, error) {
	query := `
		SELECT
			COALESCE(SUM(download_usage), 0),
			COALESCE(SUM(upload_usage), 0),
			COALESCE(AVG(download_usage), 0),
			COALESCE(AVG(upload_usage), 0),
			COALESCE(MAX(total_usage), 0),
			COALESCE(MAX(device_count), 0)
		FROM usage_data
		WHERE user_id = $1 AND date >= $2
	`

	s := &usage.Summary{Days: days}
	err := r.db.QueryRow(ctx, query, userID, time.Now().AddDate(0, 0, -days)).Scan(
		&s.TotalDownload, &s.TotalUpload,
		&s.Averages.AverageDownload, &s.Averages.AverageUpload,
		&s.Averages.PeakUsage, &s.Averages.DeviceCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to compute usage summary: %w", err)
	}

	return s, nil
}
