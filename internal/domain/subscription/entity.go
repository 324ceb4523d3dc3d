// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"

	"lumen-service/internal/pkg/billing"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"
	StatusCancelled Status = "cancelled"

	// StatusExpired is derived, never stored: an active row whose end
	// date or billing date has passed reports it from EffectiveStatus.
	StatusExpired Status = "expired"
)

type Subscription struct {
	ID     int64  `json:"id" db:"id"`
	UserID int64  `json:"user_id" db:"user_id"`

	// Plan snapshot at transition time; catalog price changes do not
	// rewrite history.
	PlanID        string  `json:"plan_id" db:"plan_id"`
	PlanName      string  `json:"plan_name" db:"plan_name"`
	PlanType      string  `json:"plan_type" db:"plan_type"`
	Price         float64 `json:"price" db:"price"`
	DownloadSpeed int     `json:"download_speed" db:"download_speed"`
	UploadSpeed   int     `json:"upload_speed" db:"upload_speed"`

	Status          Status        `json:"status" db:"status"`
	StartDate       time.Time     `json:"start_date" db:"start_date"`
	EndDate         sql.NullTime  `json:"end_date,omitempty" db:"end_date"`
	NextBillingDate time.Time     `json:"next_billing_date" db:"next_billing_date"`
	BillingCycle    billing.Cycle `json:"billing_cycle" db:"billing_cycle"`
	AutoRenew       bool          `json:"auto_renew" db:"auto_renew"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus derives the status as of now from stored timestamps.
// No background job flips rows: a cancelled row is active service until its
// end date, an active row past its end date (or, without auto-renew, past
// its billing date) reads as expired, and a deferred downgrade row becomes
// active once its start date arrives.
func (s *Subscription) EffectiveStatus(now time.Time) Status {
	switch s.Status {
	case StatusCancelled:
		if s.EndDate.Valid && now.Before(s.EndDate.Time) {
			return StatusActive
		}
		return StatusCancelled
	case StatusActive:
		if s.EndDate.Valid && !now.Before(s.EndDate.Time) {
			return StatusExpired
		}
		// Without auto-renew the paid period ends at the billing date.
		if !s.EndDate.Valid && !s.AutoRenew && !now.Before(s.NextBillingDate) {
			return StatusExpired
		}
		return StatusActive
	case StatusInactive:
		// Deferred downgrade rows carry a future start date.
		if !now.Before(s.StartDate) && (!s.EndDate.Valid || now.Before(s.EndDate.Time)) {
			return StatusActive
		}
		return StatusInactive
	default:
		return s.Status
	}
}

// IsCurrent reports whether the row represents live service as of now.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.EffectiveStatus(now) == StatusActive
}
