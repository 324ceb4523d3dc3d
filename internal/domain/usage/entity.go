// internal/domain/usage/entity.go
package usage

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Record is one daily usage sample per user, upserted on (user_id, date).
type Record struct {
	ID             int64         `json:"id" db:"id"`
	UserID         int64         `json:"user_id" db:"user_id"`
	SubscriptionID sql.NullInt64 `json:"subscription_id,omitempty" db:"subscription_id"`
	Date           time.Time     `json:"date" db:"date"`

	DownloadUsage float64 `json:"download_usage" db:"download_usage"`
	UploadUsage   float64 `json:"upload_usage" db:"upload_usage"`
	TotalUsage    float64 `json:"total_usage" db:"total_usage"`

	DeviceCount      int            `json:"device_count" db:"device_count"`
	ActiveHours      float64        `json:"active_hours" db:"active_hours"`
	UsagePatterns    string         `json:"usage_patterns,omitempty" db:"usage_patterns"`
	ApplicationUsage pq.StringArray `json:"application_usage,omitempty" db:"application_usage"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type ReportRequest struct {
	DownloadUsage    float64    `json:"download_usage" binding:"min=0"`
	UploadUsage      float64    `json:"upload_usage" binding:"min=0"`
	DeviceCount      int        `json:"device_count" binding:"min=0"`
	ActiveHours      float64    `json:"active_hours" binding:"min=0,max=24"`
	UsagePatterns    string     `json:"usage_patterns,omitempty"`
	ApplicationUsage []string   `json:"application_usage,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
}

// RollingAverages are the trailing-30-day aggregates mirrored onto the user
// row after every usage write.
type RollingAverages struct {
	AverageDownload float64 `json:"average_download"`
	AverageUpload   float64 `json:"average_upload"`
	PeakUsage       float64 `json:"peak_usage"`
	DeviceCount     int     `json:"device_count"`
}

type Summary struct {
	Days          int             `json:"days"`
	TotalDownload float64         `json:"total_download"`
	TotalUpload   float64         `json:"total_upload"`
	Averages      RollingAverages `json:"averages"`
}
