// Package report turns raw expense records into daily and category
// aggregates over a calendar window, keeps that view live as the store
// changes, and holds the last computed report for export consumers.
package report

import (
	"time"
)

// UnknownCategory buckets records whose category is absent or blank.
// The substitution happens only in the reporting path; list views show
// the raw category untouched.
const UnknownCategory = "Unknown"

// DailyTotal is the aggregate for one calendar day. A window's series
// carries one entry per day, zero-activity days included.
type DailyTotal struct {
	Date         time.Time // local midnight
	TotalAmount  float64
	ExpenseCount int
}

// CategoryTotal is the aggregate for one category label within a window.
// Only categories with at least one record appear.
type CategoryTotal struct {
	Category     string
	TotalAmount  float64
	ExpenseCount int
	Percentage   float64 // share of the window total, 0 when the total is 0
}

// Data is a computed report over an inclusive calendar window.
type Data struct {
	DailyTotals    []DailyTotal    // ascending by date, one per day
	CategoryTotals []CategoryTotal // descending by total, stable ties
	TotalAmount    float64
	TotalExpenses  int
	ReportPeriod   string
	GeneratedAt    time.Time // informational only
}
