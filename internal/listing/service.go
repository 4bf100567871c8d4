// Package listing serves the browse/filter views: expenses for a day,
// the full history, and category groupings. Unlike the report path, the
// raw category label is never substituted here.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/storage"
)

// CategoryGroup is one category's expenses, ordered date descending as
// the store returns them.
type CategoryGroup struct {
	Category string
	Expenses []core.Expense
}

// Stats is a count/amount pair for a day or the whole history.
type Stats struct {
	Count  int
	Amount float64
}

type Service struct {
	store *storage.SQLiteStore
	loc   *time.Location
	log   *slog.Logger
}

func NewService(store *storage.SQLiteStore, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, loc: loc, log: logger}
}

// ForDay returns the expenses recorded on the local calendar day of t,
// date descending.
func (s *Service) ForDay(ctx context.Context, t time.Time) ([]core.Expense, error) {
	startMs, endMs := core.DayRangeMillis(t.In(s.loc))
	expenses, err := s.store.QueryByDateRange(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("list expenses for day: %w", err)
	}
	return expenses, nil
}

// All returns the full history, date descending.
func (s *Service) All(ctx context.Context) ([]core.Expense, error) {
	expenses, err := s.store.QueryAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all expenses: %w", err)
	}
	return expenses, nil
}

// GroupedByCategory groups a day's expenses (or the whole history when
// day is nil) by their raw category label, groups ordered by category.
func (s *Service) GroupedByCategory(ctx context.Context, day *time.Time) ([]CategoryGroup, error) {
	var (
		expenses []core.Expense
		err      error
	)
	if day != nil {
		expenses, err = s.ForDay(ctx, *day)
	} else {
		expenses, err = s.All(ctx)
	}
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]core.Expense)
	for _, e := range expenses {
		byCategory[e.Category] = append(byCategory[e.Category], e)
	}

	groups := make([]CategoryGroup, 0, len(byCategory))
	for category, list := range byCategory {
		groups = append(groups, CategoryGroup{Category: category, Expenses: list})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups, nil
}

// TotalStats returns count and amount for the local day of t, or for
// the whole history when t is nil. Uses the store's aggregate query
// instead of loading records.
func (s *Service) TotalStats(ctx context.Context, t *time.Time) (Stats, error) {
	var r *storage.Range
	if t != nil {
		startMs, endMs := core.DayRangeMillis(t.In(s.loc))
		r = &storage.Range{StartMs: startMs, EndMs: endMs}
	}
	count, amount, err := s.store.AggregateCountAndSum(ctx, r)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregate stats: %w", err)
	}
	return Stats{Count: count, Amount: amount}, nil
}

// Remove deletes a record. Removing an id that no longer exists is a
// no-op, matching the store contract.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}
	s.log.InfoContext(ctx, "expense removed", "expense_id", id)
	return nil
}
