package listing

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.SQLiteStore) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "expenses.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store, time.UTC, nil), store
}

func seed(t *testing.T, store *storage.SQLiteStore, title string, amount float64, category string, at time.Time) core.Expense {
	t.Helper()
	e := core.NewExpense(title, amount, category, "", "", at)
	if err := store.Insert(context.Background(), e); err != nil {
		t.Fatalf("seed %s: %v", title, err)
	}
	return e
}

func TestForDay(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seed(t, store, "morning", 5, "Food", day.Add(9*time.Hour))
	seed(t, store, "evening", 8, "Food", day.Add(20*time.Hour))
	seed(t, store, "next day", 3, "Food", day.AddDate(0, 0, 1))

	got, err := svc.ForDay(ctx, day.Add(12*time.Hour))
	if err != nil {
		t.Fatalf("ForDay: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d expenses, want 2", len(got))
	}
	if got[0].Title != "evening" || got[1].Title != "morning" {
		t.Errorf("order = %s, %s; want date descending", got[0].Title, got[1].Title)
	}
}

func TestGroupedByCategory(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	at := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	seed(t, store, "taxi", 12, "Travel", at)
	seed(t, store, "lunch", 9, "Food", at.Add(time.Hour))
	seed(t, store, "dinner", 20, "Food", at.Add(8*time.Hour))
	// Raw labels survive; no substitution for blanks in the listing path.
	seed(t, store, "misc", 1, "", at)

	groups, err := svc.GroupedByCategory(ctx, nil)
	if err != nil {
		t.Fatalf("GroupedByCategory: %v", err)
	}
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	// Groups sorted by category; "" sorts first.
	if groups[0].Category != "" || groups[1].Category != "Food" || groups[2].Category != "Travel" {
		t.Errorf("group order = %q, %q, %q", groups[0].Category, groups[1].Category, groups[2].Category)
	}
	if len(groups[1].Expenses) != 2 {
		t.Errorf("Food has %d expenses, want 2", len(groups[1].Expenses))
	}
}

func TestGroupedByCategoryForDay(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	day := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	seed(t, store, "in range", 9, "Food", day)
	seed(t, store, "out of range", 20, "Food", day.AddDate(0, 0, 2))

	groups, err := svc.GroupedByCategory(ctx, &day)
	if err != nil {
		t.Fatalf("GroupedByCategory: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Expenses) != 1 {
		t.Fatalf("groups = %+v", groups)
	}
	if groups[0].Expenses[0].Title != "in range" {
		t.Errorf("wrong expense selected")
	}
}

func TestTotalStats(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	day := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	seed(t, store, "a", 10, "Food", day)
	seed(t, store, "b", 5, "Food", day.Add(time.Hour))
	seed(t, store, "c", 7, "Food", day.AddDate(0, 0, 3))

	all, err := svc.TotalStats(ctx, nil)
	if err != nil {
		t.Fatalf("TotalStats(all): %v", err)
	}
	if all.Count != 3 || all.Amount != 22 {
		t.Errorf("all = %+v, want 3/22", all)
	}

	daily, err := svc.TotalStats(ctx, &day)
	if err != nil {
		t.Fatalf("TotalStats(day): %v", err)
	}
	if daily.Count != 2 || daily.Amount != 15 {
		t.Errorf("day = %+v, want 2/15", daily)
	}
}

func TestRemove(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	e := seed(t, store, "a", 10, "Food", time.Now())
	if err := svc.Remove(ctx, e.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := svc.Remove(ctx, e.ID); err != nil {
		t.Fatalf("second Remove should be a no-op, got %v", err)
	}

	left, err := svc.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d records left", len(left))
	}
}
