// internal/repository/postgres/payment_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lumen-service/internal/domain/payment"
	xerrors "lumen-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository is the append-only billing ledger. No update or delete
// statements exist on purpose.
type PaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `
	id, user_id, subscription_id, transaction_id, amount, payment_method,
	payment_status, payment_type, description, invoice_number, paid_date, created_at
`

// CreateWithTx appends a ledger entry within the lifecycle transaction.
func (r *PaymentRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, p *payment.PaymentHistory) error {
	query := `
		INSERT INTO payment_history (
			user_id, subscription_id, transaction_id, amount, payment_method,
			payment_status, payment_type, description, invoice_number, paid_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx, query,
		p.UserID, p.SubscriptionID, p.TransactionID, p.Amount, p.PaymentMethod,
		p.PaymentStatus, p.PaymentType, p.Description, p.InvoiceNumber, p.PaidDate,
	).Scan(&p.ID, &p.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append payment record: %w", err)
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id int64) (*payment.PaymentHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM payment_history WHERE id = $1`, paymentColumns)

	var p payment.PaymentHistory
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.SubscriptionID, &p.TransactionID, &p.Amount, &p.PaymentMethod,
		&p.PaymentStatus, &p.PaymentType, &p.Description, &p.InvoiceNumber, &p.PaidDate, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}

	return &p, nil
}

// ListByUser returns ledger entries for a user, newest first.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID int64, filters *payment.ListFilters) ([]payment.PaymentHistory, int64, error) {
	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}
	argPos := 2

	if filters.Status != nil {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", argPos))
		args = append(args, *filters.Status)
		argPos++
	}

	if filters.Type != nil {
		conditions = append(conditions, fmt.Sprintf("payment_type = $%d", argPos))
		args = append(args, *filters.Type)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM payment_history WHERE %s", whereClause)
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	query := fmt.Sprintf(`
		SELECT %s FROM payment_history
		WHERE %s
		ORDER BY paid_date DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, paymentColumns, whereClause, argPos, argPos+1)

	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.PaymentHistory{}
	for rows.Next() {
		var p payment.PaymentHistory
		err := rows.Scan(
			&p.ID, &p.UserID, &p.SubscriptionID, &p.TransactionID, &p.Amount, &p.PaymentMethod,
			&p.PaymentStatus, &p.PaymentType, &p.Description, &p.InvoiceNumber, &p.PaidDate, &p.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, total, rows.Err()
}

// GetRevenueSummary aggregates the ledger for the admin dashboard.
func (r *PaymentRepository) GetRevenueSummary(ctx context.Context) (*payment.RevenueSummary, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN payment_status = 'completed' THEN 1 END) AS completed,
			COALESCE(SUM(CASE WHEN payment_status = 'completed' THEN amount ELSE 0 END), 0) AS revenue,
			COALESCE(AVG(CASE WHEN payment_status = 'completed' THEN amount END), 0) AS avg_payment
		FROM payment_history
	`

	var s payment.RevenueSummary
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalPayments, &s.CompletedCount, &s.TotalRevenue, &s.AveragePayment,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get revenue summary: %w", err)
	}

	return &s, nil
}
