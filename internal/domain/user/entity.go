// internal/domain/user/entity.go
package user

import (
	"database/sql"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
	SubscriptionStatusSuspended SubscriptionStatus = "suspended"
)

// UsageSummary mirrors the trailing-30-day usage aggregates onto the user
// row. It is recomputed inside the same transaction as every usage write,
// never independently.
type UsageSummary struct {
	AverageDownload float64 `json:"average_download"`
	AverageUpload   float64 `json:"average_upload"`
	PeakUsage       float64 `json:"peak_usage"`
	DeviceCount     int     `json:"device_count"`
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	FullName     string `json:"full_name" db:"full_name"`
	Role         Role   `json:"role" db:"role"`

	// Denormalized view of the active subscription; written only inside
	// the same transaction as the subscription row itself.
	CurrentPlan        sql.NullString     `json:"current_plan,omitempty" db:"current_plan"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status" db:"subscription_status"`

	UsageData UsageSummary `json:"usage_data" db:"usage_data"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
