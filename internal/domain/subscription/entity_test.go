package subscription

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	before := now.AddDate(0, -1, 0)
	after := now.AddDate(0, 1, 0)

	tests := []struct {
		name string
		sub  Subscription
		want Status
	}{
		{
			name: "active without end date",
			sub:  Subscription{Status: StatusActive, StartDate: before, AutoRenew: true},
			want: StatusActive,
		},
		{
			name: "active past end date reads expired",
			sub: Subscription{
				Status:    StatusActive,
				AutoRenew: true,
				EndDate:   sql.NullTime{Time: before, Valid: true},
			},
			want: StatusExpired,
		},
		{
			name: "non-renewing row past billing date reads expired",
			sub: Subscription{
				Status:          StatusActive,
				AutoRenew:       false,
				NextBillingDate: before,
			},
			want: StatusExpired,
		},
		{
			name: "non-renewing row before billing date is active",
			sub: Subscription{
				Status:          StatusActive,
				AutoRenew:       false,
				NextBillingDate: after,
			},
			want: StatusActive,
		},
		{
			name: "auto-renewing row past billing date stays active",
			sub: Subscription{
				Status:          StatusActive,
				AutoRenew:       true,
				NextBillingDate: before,
			},
			want: StatusActive,
		},
		{
			name: "cancelled before end date is still active service",
			sub: Subscription{
				Status:  StatusCancelled,
				EndDate: sql.NullTime{Time: after, Valid: true},
			},
			want: StatusActive,
		},
		{
			name: "cancelled past end date",
			sub: Subscription{
				Status:  StatusCancelled,
				EndDate: sql.NullTime{Time: before, Valid: true},
			},
			want: StatusCancelled,
		},
		{
			name: "deferred downgrade before start stays inactive",
			sub:  Subscription{Status: StatusInactive, StartDate: after},
			want: StatusInactive,
		},
		{
			name: "deferred downgrade becomes active at start",
			sub:  Subscription{Status: StatusInactive, StartDate: now},
			want: StatusActive,
		},
		{
			name: "retired inactive row with end date stays inactive",
			sub: Subscription{
				Status:    StatusInactive,
				StartDate: before,
				EndDate:   sql.NullTime{Time: before, Valid: true},
			},
			want: StatusInactive,
		},
		{
			name: "suspended passes through",
			sub:  Subscription{Status: StatusSuspended, StartDate: before},
			want: StatusSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.EffectiveStatus(now))
		})
	}
}

func TestIsCurrent(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	live := Subscription{Status: StatusActive, StartDate: now.AddDate(0, -1, 0), AutoRenew: true}
	assert.True(t, live.IsCurrent(now))

	retired := Subscription{
		Status:    StatusActive,
		AutoRenew: true,
		EndDate:   sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
	}
	assert.False(t, retired.IsCurrent(now))
}
