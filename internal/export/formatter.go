// Package export renders computed reports into deterministic artifacts
// (CSV, a plain-text report document, a shareable summary) and runs
// export work asynchronously with exactly one terminal signal per task.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

// MIME types for export artifacts.
const (
	MIMECSV = "text/csv"
	MIMEPDF = "application/pdf"
)

// CurrencySymbol prefixes displayed amounts. Stored amounts are
// currency-agnostic; the symbol is presentation only.
const CurrencySymbol = "₹"

// Formatter renders reports and record lists. It is stateless apart
// from the timezone used for calendar dates.
type Formatter struct {
	loc *time.Location
}

func NewFormatter(loc *time.Location) *Formatter {
	if loc == nil {
		loc = time.Local
	}
	return &Formatter{loc: loc}
}

// CSV renders one row per record under the header
// Date,Title,Category,Amount. Dates are ISO-8601 calendar dates,
// amounts plain decimal text with no currency symbol or separators.
//
// CSV works from the raw record list, not the aggregate: the report
// only carries totals.
func (f *Formatter) CSV(records []core.Expense) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Date", "Title", "Category", "Amount"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range records {
		row := []string{
			core.ISODate(e.Date.In(f.loc)),
			e.Title,
			e.Category,
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TextReport renders the PDF-substitute document: title, period, grand
// total and generation timestamp.
func (f *Formatter) TextReport(data report.Data) []byte {
	var b strings.Builder
	b.WriteString("Expense Report\n")
	b.WriteString("-----------------\n")
	fmt.Fprintf(&b, "Period: %s\n", data.ReportPeriod)
	fmt.Fprintf(&b, "Total Amount: %s%.2f\n", CurrencySymbol, data.TotalAmount)
	fmt.Fprintf(&b, "Total Expenses: %d\n", data.TotalExpenses)
	fmt.Fprintf(&b, "Generated: %s\n", data.GeneratedAt.In(f.loc).Format(time.RFC3339))
	return []byte(b.String())
}

// ShareSummary renders the multi-line plain-text digest handed to the
// share sheet. Ordering follows the report as stored.
func (f *Formatter) ShareSummary(data report.Data) string {
	var b strings.Builder
	b.WriteString("📊 Expense Report\n")
	b.WriteString("================\n")
	fmt.Fprintf(&b, "Period: %s\n", data.ReportPeriod)
	fmt.Fprintf(&b, "Total Amount: %s%.2f\n", CurrencySymbol, data.TotalAmount)
	fmt.Fprintf(&b, "Total Expenses: %d\n", data.TotalExpenses)
	b.WriteString("\n")

	b.WriteString("📅 Daily Summary:\n")
	for _, daily := range data.DailyTotals {
		fmt.Fprintf(&b, "%s: %s%.2f (%d expenses)\n",
			core.ISODate(daily.Date), CurrencySymbol, daily.TotalAmount, daily.ExpenseCount)
	}

	b.WriteString("\n")
	b.WriteString("📂 Category Summary:\n")
	for _, cat := range data.CategoryTotals {
		fmt.Fprintf(&b, "%s: %s%.2f (%.1f%%)\n",
			cat.Category, CurrencySymbol, cat.TotalAmount, cat.Percentage)
	}

	return b.String()
}

// ShareSubject is the subject line accompanying a shared summary.
func ShareSubject(data report.Data) string {
	return "Expense Report - " + data.ReportPeriod
}
