// internal/pkg/billing/dates.go
package billing

import "time"

type Cycle string

const (
	CycleMonthly   Cycle = "monthly"
	CycleQuarterly Cycle = "quarterly"
	CycleYearly    Cycle = "yearly"
)

// Valid reports whether the cycle is one of the supported billing cycles.
func (c Cycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleYearly:
		return true
	}
	return false
}

// NextDate returns the next billing date after start for the given cycle.
// Calendar arithmetic throughout: AddDate normalizes month-end overflow
// (Jan 31 + 1 month = Mar 3), which is the documented behavior for every
// transition path, downgrades included.
func NextDate(start time.Time, cycle Cycle) time.Time {
	switch cycle {
	case CycleQuarterly:
		return start.AddDate(0, 3, 0)
	case CycleYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}
