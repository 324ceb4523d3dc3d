// internal/domain/offer/dto.go
package offer

import "time"

type CreateRequest struct {
	Title              string       `json:"title" binding:"required,max=255"`
	Description        string       `json:"description,omitempty"`
	DiscountType       DiscountType `json:"discount_type" binding:"required,oneof=percentage fixed_amount free_item"`
	DiscountPercentage *float64     `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64     `json:"discount_amount,omitempty"`
	FreeItem           string       `json:"free_item,omitempty"`
	ValidFrom          time.Time    `json:"valid_from" binding:"required"`
	ValidUntil         time.Time    `json:"valid_until" binding:"required"`
	IsActive           *bool        `json:"is_active,omitempty"`
	Eligibility        []string     `json:"eligibility,omitempty"`
	ApplicablePlans    []string     `json:"applicable_plans,omitempty"`
	MaxUses            *int         `json:"max_uses,omitempty"`
}

type UpdateRequest struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	DiscountPercentage *float64   `json:"discount_percentage,omitempty"`
	DiscountAmount     *float64   `json:"discount_amount,omitempty"`
	ValidFrom          *time.Time `json:"valid_from,omitempty"`
	ValidUntil         *time.Time `json:"valid_until,omitempty"`
	IsActive           *bool      `json:"is_active,omitempty"`
	Eligibility        []string   `json:"eligibility,omitempty"`
	ApplicablePlans    []string   `json:"applicable_plans,omitempty"`
	MaxUses            *int       `json:"max_uses,omitempty"`
}

type ApplyRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
}

type ApplyResult struct {
	OfferID         int64   `json:"offer_id"`
	PlanID          string  `json:"plan_id"`
	OriginalPrice   float64 `json:"original_price"`
	DiscountedPrice float64 `json:"discounted_price"`
	FreeItem        string  `json:"free_item,omitempty"`
}
