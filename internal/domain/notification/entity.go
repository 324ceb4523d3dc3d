// internal/domain/notification/entity.go
package notification

import (
	"database/sql"
	"time"
)

type Type string

const (
	TypeSubscription Type = "subscription"
	TypeBilling      Type = "billing"
	TypeSystem       Type = "system"
)

type Notification struct {
	ID        int64        `json:"id" db:"id"`
	UserID    int64        `json:"user_id" db:"user_id"`
	Type      Type         `json:"type" db:"type"`
	Title     string       `json:"title" db:"title"`
	Message   string       `json:"message" db:"message"`
	IsRead    bool         `json:"is_read" db:"is_read"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	ReadAt    sql.NullTime `json:"read_at,omitempty" db:"read_at"`
}

type ListFilters struct {
	IsRead   *bool `form:"is_read"`
	Page     int   `form:"page"`
	PageSize int   `form:"page_size"`
}

type ListResponse struct {
	Notifications []Notification `json:"notifications"`
	Total         int64          `json:"total"`
	Page          int            `json:"page"`
	PageSize      int            `json:"page_size"`
}
