// internal/domain/subscription/dto.go
package subscription

import (
	"lumen-service/internal/domain/payment"
	"lumen-service/internal/pkg/billing"
)

type SubscribeRequest struct {
	PlanID       string        `json:"plan_id" binding:"required"`
	BillingCycle billing.Cycle `json:"billing_cycle,omitempty"`
	AutoRenew    *bool         `json:"auto_renew,omitempty"`
}

type ChangePlanRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type AdminUpdateRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	PlanID string `json:"plan_id" binding:"required"`
}

type AdminCancelRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Reason string `json:"reason,omitempty"`
}

// TransitionResult is the response payload for every lifecycle operation:
// the authoritative subscription row plus the ledger entry it produced.
type TransitionResult struct {
	Subscription *Subscription           `json:"subscription"`
	Payment      *payment.PaymentHistory `json:"payment"`
}

// View is a Subscription with its effective status resolved at read time.
type View struct {
	Subscription
	EffectiveStatus Status `json:"effective_status"`
}

type ListFilters struct {
	Status   *Status `form:"status"`
	UserID   *int64  `form:"user_id"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

type ListResponse struct {
	Subscriptions []View `json:"subscriptions"`
	Total         int64  `json:"total"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}
