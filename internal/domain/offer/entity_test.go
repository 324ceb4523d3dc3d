package offer

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	base := Offer{
		IsActive:   true,
		ValidFrom:  now.AddDate(0, 0, -7),
		ValidUntil: now.AddDate(0, 0, 7),
	}
	assert.True(t, base.Valid(now))

	inactive := base
	inactive.IsActive = false
	assert.False(t, inactive.Valid(now))

	// An expired window wins over the active flag.
	expired := base
	expired.ValidUntil = now.AddDate(0, 0, -1)
	assert.False(t, expired.Valid(now))

	notStarted := base
	notStarted.ValidFrom = now.AddDate(0, 0, 1)
	assert.False(t, notStarted.Valid(now))

	exhausted := base
	exhausted.MaxUses = sql.NullInt32{Int32: 5, Valid: true}
	exhausted.CurrentUses = 5
	assert.False(t, exhausted.Valid(now))

	lastSlot := exhausted
	lastSlot.CurrentUses = 4
	assert.True(t, lastSlot.Valid(now))
}

func TestAppliesTo(t *testing.T) {
	unrestricted := Offer{}
	assert.True(t, unrestricted.AppliesTo("basic-fiber"))

	scoped := Offer{ApplicablePlans: []string{"premium-fiber", "business-fiber"}}
	assert.True(t, scoped.AppliesTo("premium-fiber"))
	assert.False(t, scoped.AppliesTo("basic-copper"))
}

func TestDiscount(t *testing.T) {
	pct := Offer{
		DiscountType:       DiscountTypePercentage,
		DiscountPercentage: sql.NullFloat64{Float64: 25, Valid: true},
	}
	assert.InDelta(t, 29.9925, pct.Discount(39.99), 1e-9)

	fixed := Offer{
		DiscountType:   DiscountTypeFixedAmount,
		DiscountAmount: sql.NullFloat64{Float64: 10, Valid: true},
	}
	assert.InDelta(t, 29.99, fixed.Discount(39.99), 1e-9)

	// Never below zero.
	deep := Offer{
		DiscountType:   DiscountTypeFixedAmount,
		DiscountAmount: sql.NullFloat64{Float64: 100, Valid: true},
	}
	assert.Equal(t, 0.0, deep.Discount(39.99))

	free := Offer{
		DiscountType: DiscountTypeFreeItem,
		FreeItem:     sql.NullString{String: "WiFi 6 router", Valid: true},
	}
	assert.Equal(t, 39.99, free.Discount(39.99))

	// Missing value for the declared type leaves the price alone.
	missing := Offer{DiscountType: DiscountTypePercentage}
	assert.Equal(t, 39.99, missing.Discount(39.99))
}
