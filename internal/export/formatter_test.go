package export

import (
	"strings"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/report"
)

func sampleReport() report.Data {
	loc := time.UTC
	return report.Data{
		DailyTotals: []report.DailyTotal{
			{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, loc), TotalAmount: 100, ExpenseCount: 1},
			{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, loc), TotalAmount: 75, ExpenseCount: 2},
			{Date: time.Date(2025, 1, 3, 0, 0, 0, 0, loc), TotalAmount: 0, ExpenseCount: 0},
		},
		CategoryTotals: []report.CategoryTotal{
			{Category: "Food", TotalAmount: 150, ExpenseCount: 2, Percentage: 85.71428571428571},
			{Category: "Travel", TotalAmount: 25, ExpenseCount: 1, Percentage: 14.285714285714286},
		},
		TotalAmount:   175,
		TotalExpenses: 3,
		ReportPeriod:  "Last 3 days (2025-01-01 to 2025-01-03)",
		GeneratedAt:   time.Date(2025, 1, 3, 15, 4, 5, 0, loc),
	}
}

func TestCSV(t *testing.T) {
	f := NewFormatter(time.UTC)
	records := []core.Expense{
		{Title: "Tea", Category: "Food", Amount: 15,
			Date: time.Date(2025, 8, 10, 9, 30, 0, 0, time.UTC)},
		{Title: "Bus Ticket", Category: "Travel", Amount: 20.5,
			Date: time.Date(2025, 8, 10, 18, 0, 0, 0, time.UTC)},
	}

	out, err := f.CSV(records)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3 (header + 2 rows):\n%s", len(lines), out)
	}
	if lines[0] != "Date,Title,Category,Amount" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "2025-08-10,Tea,Food,15" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "2025-08-10,Bus Ticket,Travel,20.5" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestCSV_EmptyRecordList(t *testing.T) {
	f := NewFormatter(time.UTC)
	out, err := f.CSV(nil)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if got := strings.TrimRight(string(out), "\n"); got != "Date,Title,Category,Amount" {
		t.Errorf("empty export = %q, want header only", got)
	}
}

func TestCSV_QuotesFieldsWithCommas(t *testing.T) {
	f := NewFormatter(time.UTC)
	records := []core.Expense{
		{Title: "Lunch, downtown", Category: "Food", Amount: 12,
			Date: time.Date(2025, 8, 10, 12, 0, 0, 0, time.UTC)},
	}
	out, err := f.CSV(records)
	if err != nil {
		t.Fatalf("CSV: %v", err)
	}
	if !strings.Contains(string(out), `"Lunch, downtown"`) {
		t.Errorf("comma field not quoted:\n%s", out)
	}
}

func TestTextReport(t *testing.T) {
	f := NewFormatter(time.UTC)
	out := string(f.TextReport(sampleReport()))

	for _, want := range []string{
		"Expense Report",
		"Period: Last 3 days (2025-01-01 to 2025-01-03)",
		"Total Amount: " + CurrencySymbol + "175.00",
		"Total Expenses: 3",
		"Generated: 2025-01-03T15:04:05Z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
}

func TestShareSummary(t *testing.T) {
	f := NewFormatter(time.UTC)
	out := f.ShareSummary(sampleReport())

	daily := strings.Index(out, "Daily Summary:")
	category := strings.Index(out, "Category Summary:")
	if daily < 0 || category < 0 || daily > category {
		t.Fatalf("sections missing or out of order:\n%s", out)
	}

	for _, want := range []string{
		"Period: Last 3 days (2025-01-01 to 2025-01-03)",
		"Total Amount: " + CurrencySymbol + "175.00",
		"Total Expenses: 3",
		"2025-01-01: " + CurrencySymbol + "100.00 (1 expenses)",
		"2025-01-03: " + CurrencySymbol + "0.00 (0 expenses)",
		"Food: " + CurrencySymbol + "150.00 (85.7%)",
		"Travel: " + CurrencySymbol + "25.00 (14.3%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("share summary missing %q:\n%s", want, out)
		}
	}

	// Category lines keep the stored (descending) order.
	if strings.Index(out, "Food:") > strings.Index(out, "Travel:") {
		t.Errorf("category order not preserved:\n%s", out)
	}
}

func TestShareSubject(t *testing.T) {
	got := ShareSubject(sampleReport())
	want := "Expense Report - Last 3 days (2025-01-01 to 2025-01-03)"
	if got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}
}
