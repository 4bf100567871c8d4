// Package storage persists expense records in SQLite and emits change
// signals so report and list views can stay live. The store is the only
// shared mutable resource in the system; it is single-writer and
// consistent-read.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"expensetracker/internal/core"

	_ "modernc.org/sqlite"
)

// ErrDuplicateID is returned when inserting a record whose id already
// exists.
var ErrDuplicateID = errors.New("duplicate expense id")

// Range bounds a date query in epoch milliseconds: StartMs inclusive,
// EndMs exclusive.
type Range struct {
	StartMs int64
	EndMs   int64
}

type SQLiteStore struct {
	db       *sql.DB
	notifier *notifier
}

func Open(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		notifier: newNotifier(),
	}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert persists a record. The record is immutable afterwards; there
// is no update operation.
func (s *SQLiteStore) Insert(ctx context.Context, e core.Expense) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, title, amount, category, notes, receipt_uri, date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount, e.Category,
		nullable(e.Notes), nullable(e.ReceiptURI), e.Date.UnixMilli())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("insert expense %s: %w", e.ID, ErrDuplicateID)
		}
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "expense saved",
		"id", e.ID,
		"title", e.Title,
		"amount", e.Amount,
		"category", e.Category)

	s.notifier.notify()
	return nil
}

// Delete removes a record by id. Deleting a missing record is a no-op,
// not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense rows affected: %w", err)
	}
	if affected == 0 {
		return nil
	}

	slog.InfoContext(ctx, "expense deleted", "id", id)
	s.notifier.notify()
	return nil
}

// CountDuplicates counts records matching title and category
// case-insensitively and the timestamp exactly. Two records entered on
// the same calendar day at different times never match; this mirrors
// the entry flow's duplicate check as shipped.
func (s *SQLiteStore) CountDuplicates(ctx context.Context, dateMs int64, title, category string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses
		 WHERE date = ? AND LOWER(title) = LOWER(?) AND LOWER(category) = LOWER(?)`,
		dateMs, title, category).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count duplicates: %w", err)
	}
	return count, nil
}

// QueryByDateRange returns records with StartMs <= date < EndMs,
// ordered by date descending.
func (s *SQLiteStore) QueryByDateRange(ctx context.Context, startMs, endMs int64) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, category, notes, receipt_uri, date
		 FROM expenses WHERE date >= ? AND date < ? ORDER BY date DESC`,
		startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("query expenses by date range: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

// QueryAll returns every record, ordered by date descending.
func (s *SQLiteStore) QueryAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, amount, category, notes, receipt_uri, date
		 FROM expenses ORDER BY date DESC`)
	if err != nil {
		return nil, fmt.Errorf("query all expenses: %w", err)
	}
	defer rows.Close()
	return scanExpenses(rows)
}

// AggregateCountAndSum returns the record count and amount sum, over
// the whole table when r is nil or over the given range otherwise.
func (s *SQLiteStore) AggregateCountAndSum(ctx context.Context, r *Range) (int, float64, error) {
	var (
		count int
		sum   sql.NullFloat64
	)
	var err error
	if r == nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*), SUM(amount) FROM expenses`).Scan(&count, &sum)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*), SUM(amount) FROM expenses WHERE date >= ? AND date < ?`,
			r.StartMs, r.EndMs).Scan(&count, &sum)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("aggregate count and sum: %w", err)
	}
	return count, sum.Float64, nil
}

// Watch returns a channel signalled after every successful mutation.
// The channel closes when ctx is done.
func (s *SQLiteStore) Watch(ctx context.Context) <-chan struct{} {
	return s.notifier.watch(ctx)
}

// Version increases monotonically with every mutation.
func (s *SQLiteStore) Version() uint64 {
	return s.notifier.version.Load()
}

// WatchByDateRange delivers the current range query result immediately
// and again after every mutation, until ctx is done. A query failure is
// terminal for the watch.
func (s *SQLiteStore) WatchByDateRange(ctx context.Context, startMs, endMs int64) (<-chan []core.Expense, <-chan error) {
	out := make(chan []core.Expense)
	errc := make(chan error, 1)
	signals := s.Watch(ctx)

	go func() {
		defer close(out)
		defer close(errc)

		emit := func() error {
			records, err := s.QueryByDateRange(ctx, startMs, endMs)
			if err != nil {
				return err
			}
			select {
			case out <- records:
			case <-ctx.Done():
			}
			return nil
		}

		if err := emit(); err != nil {
			errc <- err
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if err := emit(); err != nil {
					errc <- err
					return
				}
			}
		}
	}()

	return out, errc
}

// WatchDuplicates delivers the current duplicate count immediately and
// again after every mutation, until ctx is done. Count errors stop the
// watch silently; the entry form treats an absent signal as "not a
// duplicate".
func (s *SQLiteStore) WatchDuplicates(ctx context.Context, dateMs int64, title, category string) <-chan int {
	out := make(chan int)
	signals := s.Watch(ctx)

	go func() {
		defer close(out)

		emit := func() bool {
			count, err := s.CountDuplicates(ctx, dateMs, title, category)
			if err != nil {
				slog.WarnContext(ctx, "duplicate count failed", "error", err)
				return false
			}
			select {
			case out <- count:
			case <-ctx.Done():
			}
			return true
		}

		if !emit() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()

	return out
}

func scanExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		var (
			e          core.Expense
			notes      sql.NullString
			receiptURI sql.NullString
			dateMs     int64
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Amount, &e.Category, &notes, &receiptURI, &dateMs); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Notes = notes.String
		e.ReceiptURI = receiptURI.String
		e.Date = time.UnixMilli(dateMs)
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
