// internal/domain/payment/entity.go
package payment

import (
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

type Type string

const (
	TypeSubscription     Type = "subscription"
	TypeUpgrade          Type = "upgrade"
	TypeDowngrade        Type = "downgrade"
	TypeOneTime          Type = "one_time"
	TypeRecurringMonthly Type = "recurring_monthly"
	TypeRecurringYearly  Type = "recurring_yearly"
)

// PaymentHistory is an append-only ledger entry. One row per subscription
// lifecycle transition, zero-amount rows included: cancellations and
// scheduled downgrades leave an audit trail too.
type PaymentHistory struct {
	ID             int64  `json:"id" db:"id"`
	UserID         int64  `json:"user_id" db:"user_id"`
	SubscriptionID int64  `json:"subscription_id" db:"subscription_id"`
	TransactionID  string `json:"transaction_id" db:"transaction_id"`

	Amount        float64 `json:"amount" db:"amount"`
	PaymentMethod string  `json:"payment_method" db:"payment_method"`
	PaymentStatus Status  `json:"payment_status" db:"payment_status"`
	PaymentType   Type    `json:"payment_type" db:"payment_type"`

	Description   string    `json:"description" db:"description"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	PaidDate      time.Time `json:"paid_date" db:"paid_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ListFilters struct {
	Status   *Status `form:"status"`
	Type     *Type   `form:"type"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type ListResponse struct {
	Payments []PaymentHistory `json:"payments"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// RevenueSummary backs the admin dashboard endpoint.
type RevenueSummary struct {
	TotalPayments   int64   `json:"total_payments"`
	CompletedCount  int64   `json:"completed_count"`
	TotalRevenue    float64 `json:"total_revenue"`
	AveragePayment  float64 `json:"average_payment"`
}
