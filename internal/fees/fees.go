// Package fees implements the billing rules for visitor and resident
// parking. All functions are pure: callers apply the results to revenue
// totals and persist updated due dates themselves.
package fees

import (
	"math"
	"time"
)

// Billing rates in currency units.
const (
	VisitorHourlyRate   = 10.0
	ResidentMonthlyRate = 200.0
)

// BillingMonth is the fixed resident billing period. Thirty days, not a
// calendar month.
const BillingMonth = 30 * 24 * time.Hour

// VisitorFee computes the fee for a visitor stay. Partial hours round
// up, so one second past an hour boundary bills the next full hour. A
// non-positive duration costs nothing.
func VisitorFee(entry, exit time.Time) float64 {
	if !exit.After(entry) {
		return 0
	}
	hours := exit.Sub(entry).Seconds() / 3600.0
	return math.Ceil(hours) * VisitorHourlyRate
}

// ResidentOverdueFee computes the fee owed by a resident whose due date
// has passed, and the advanced due date the caller should store. A zero
// due date means the slot was never billed; nothing is owed and the due
// date stays unchanged. Overdue periods round up to whole billing
// months.
func ResidentOverdueFee(due, now time.Time) (float64, time.Time) {
	if due.IsZero() || !now.After(due) {
		return 0, due
	}
	months := math.Ceil(now.Sub(due).Seconds() / BillingMonth.Seconds())
	newDue := due.Add(time.Duration(months) * BillingMonth)
	return months * ResidentMonthlyRate, newDue
}
