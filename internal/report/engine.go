package report

import (
	"sort"
	"strings"
	"time"

	"expensetracker/internal/core"
)

// Compute aggregates records into a report over the inclusive calendar
// window [start, end]. It is a pure function: no I/O, no hidden state,
// deterministic output for a given input sequence.
//
// The caller pre-filters records to the window; Compute does not
// re-filter. Records are bucketed by their local calendar date in loc,
// so edge records bucket correctly even when their timestamps sit right
// at a day boundary. Malformed input is tolerated: blank categories go
// to the Unknown bucket, amounts pass through as stored.
func Compute(records []core.Expense, start, end time.Time, loc *time.Location, label string) Data {
	start = core.DayOf(start.In(loc))
	end = core.DayOf(end.In(loc))

	byDay := make(map[time.Time][]core.Expense)
	for _, e := range records {
		day := e.LocalDate(loc)
		byDay[day] = append(byDay[day], e)
	}

	var daily []DailyTotal
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		bucket := byDay[day]
		var sum float64
		for _, e := range bucket {
			sum += e.Amount
		}
		daily = append(daily, DailyTotal{
			Date:         day,
			TotalAmount:  sum,
			ExpenseCount: len(bucket),
		})
	}

	var totalAmount float64
	for _, e := range records {
		totalAmount += e.Amount
	}

	// Category buckets in first-encounter order; the stable sort below
	// keeps that order for equal sums so output never depends on map
	// iteration.
	type bucket struct {
		sum   float64
		count int
	}
	var order []string
	byCategory := make(map[string]*bucket)
	for _, e := range records {
		cat := e.Category
		if strings.TrimSpace(cat) == "" {
			cat = UnknownCategory
		}
		b, ok := byCategory[cat]
		if !ok {
			b = &bucket{}
			byCategory[cat] = b
			order = append(order, cat)
		}
		b.sum += e.Amount
		b.count++
	}

	categories := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		b := byCategory[cat]
		var pct float64
		if totalAmount > 0 {
			pct = b.sum / totalAmount * 100
		}
		categories = append(categories, CategoryTotal{
			Category:     cat,
			TotalAmount:  b.sum,
			ExpenseCount: b.count,
			Percentage:   pct,
		})
	}
	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].TotalAmount > categories[j].TotalAmount
	})

	// GeneratedAt is stamped by the caller; leaving it zero keeps
	// Compute referentially transparent.
	return Data{
		DailyTotals:    daily,
		CategoryTotals: categories,
		TotalAmount:    totalAmount,
		TotalExpenses:  len(records),
		ReportPeriod:   label,
	}
}
