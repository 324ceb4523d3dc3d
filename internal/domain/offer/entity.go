// internal/domain/offer/entity.go
package offer

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
	DiscountTypeFreeItem    DiscountType = "free_item"
)

type Offer struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description sql.NullString `json:"description,omitempty" db:"description"`

	DiscountType       DiscountType    `json:"discount_type" db:"discount_type"`
	DiscountPercentage sql.NullFloat64 `json:"discount_percentage,omitempty" db:"discount_percentage"`
	DiscountAmount     sql.NullFloat64 `json:"discount_amount,omitempty" db:"discount_amount"`
	FreeItem           sql.NullString  `json:"free_item,omitempty" db:"free_item"`

	ValidFrom  time.Time `json:"valid_from" db:"valid_from"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`
	IsActive   bool      `json:"is_active" db:"is_active"`

	Eligibility     pq.StringArray `json:"eligibility,omitempty" db:"eligibility"`
	ApplicablePlans pq.StringArray `json:"applicable_plans,omitempty" db:"applicable_plans"`

	MaxUses     sql.NullInt32 `json:"max_uses,omitempty" db:"max_uses"`
	CurrentUses int           `json:"current_uses" db:"current_uses"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Valid is the validity predicate: flagged active, inside the window, and
// not exhausted. Expired-by-date offers are invalid regardless of IsActive.
func (o *Offer) Valid(now time.Time) bool {
	if !o.IsActive {
		return false
	}
	if now.Before(o.ValidFrom) || now.After(o.ValidUntil) {
		return false
	}
	if o.MaxUses.Valid && o.CurrentUses >= int(o.MaxUses.Int32) {
		return false
	}
	return true
}

// AppliesTo reports whether the offer covers the given plan. An empty
// applicable_plans list means every plan.
func (o *Offer) AppliesTo(planID string) bool {
	if len(o.ApplicablePlans) == 0 {
		return true
	}
	for _, p := range o.ApplicablePlans {
		if p == planID {
			return true
		}
	}
	return false
}

// Discount returns the price after applying the offer to basePrice.
// free_item offers do not change the price.
func (o *Offer) Discount(basePrice float64) float64 {
	switch o.DiscountType {
	case DiscountTypePercentage:
		if o.DiscountPercentage.Valid {
			discounted := basePrice * (1 - o.DiscountPercentage.Float64/100)
			if discounted < 0 {
				return 0
			}
			return discounted
		}
	case DiscountTypeFixedAmount:
		if o.DiscountAmount.Valid {
			discounted := basePrice - o.DiscountAmount.Float64
			if discounted < 0 {
				return 0
			}
			return discounted
		}
	}
	return basePrice
}
