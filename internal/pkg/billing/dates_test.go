package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDate(t *testing.T) {
	start := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 4, 15, 10, 30, 0, 0, time.UTC), NextDate(start, CycleMonthly))
	assert.Equal(t, time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC), NextDate(start, CycleQuarterly))
	assert.Equal(t, time.Date(2027, 3, 15, 10, 30, 0, 0, time.UTC), NextDate(start, CycleYearly))
}

func TestNextDateMonthEndNormalizes(t *testing.T) {
	// AddDate semantics: Jan 31 + 1 month = Feb 31 = Mar 3 in a non-leap
	// year. Every billing path shares this behavior.
	start := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), NextDate(start, CycleMonthly))

	leap := time.Date(2028, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2028, 3, 2, 0, 0, 0, 0, time.UTC), NextDate(leap, CycleMonthly))
}

func TestNextDateUnknownCycleDefaultsMonthly(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.AddDate(0, 1, 0), NextDate(start, Cycle("weekly")))
}

func TestCycleValid(t *testing.T) {
	assert.True(t, CycleMonthly.Valid())
	assert.True(t, CycleQuarterly.Valid())
	assert.True(t, CycleYearly.Valid())
	assert.False(t, Cycle("weekly").Valid())
	assert.False(t, Cycle("").Valid())
}
