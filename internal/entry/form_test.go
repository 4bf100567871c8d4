package entry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expensetracker/internal/core"
)

type fakeStore struct {
	mu        sync.Mutex
	inserted  []core.Expense
	insertErr error
	dupCounts chan int
}

func newFakeStore() *fakeStore {
	return &fakeStore{dupCounts: make(chan int, 4)}
}

func (f *fakeStore) Insert(ctx context.Context, e core.Expense) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, e)
	return nil
}

func (f *fakeStore) WatchDuplicates(ctx context.Context, dateMs int64, title, category string) <-chan int {
	out := make(chan int)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-f.dupCounts:
				if !ok {
					return
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (f *fakeStore) saved() []core.Expense {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]core.Expense(nil), f.inserted...)
}

func nextEvent(t *testing.T, f *Form) Event {
	t.Helper()
	select {
	case ev := <-f.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatalf("no event")
		return nil
	}
}

func fillValidForm(ctx context.Context, f *Form) {
	f.Dispatch(ctx, TitleChanged{Value: "Lunch"})
	f.Dispatch(ctx, AmountChanged{Value: "12.50"})
	f.Dispatch(ctx, CategoryChanged{Value: "Food"})
}

func TestFormSubmitSaves(t *testing.T) {
	store := newFakeStore()
	form := NewForm(store, nil)
	defer form.Close()
	ctx := context.Background()

	date := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)
	form.SetDate(date)
	fillValidForm(ctx, form)
	form.Dispatch(ctx, NotesChanged{Value: "  with team  "})
	form.Dispatch(ctx, Submit{})

	toast, ok := nextEvent(t, form).(Toast)
	if !ok || toast.Message != "Expense added successfully" {
		t.Fatalf("got %#v, want success toast", toast)
	}
	saved, ok := nextEvent(t, form).(Saved)
	if !ok {
		t.Fatalf("expected Saved event")
	}

	records := store.saved()
	if len(records) != 1 {
		t.Fatalf("inserted %d records, want 1", len(records))
	}
	e := records[0]
	if e.ID != saved.ID {
		t.Errorf("Saved.ID = %q, record ID = %q", saved.ID, e.ID)
	}
	if e.Title != "Lunch" || e.Amount != 12.50 || e.Category != "Food" {
		t.Errorf("record = %+v", e)
	}
	if e.Notes != "with team" {
		t.Errorf("notes not trimmed: %q", e.Notes)
	}
	if !e.Date.Equal(date) {
		t.Errorf("date = %v, want %v", e.Date, date)
	}
}

func TestFormSubmitInvalidDoesNotSave(t *testing.T) {
	store := newFakeStore()
	form := NewForm(store, nil)
	defer form.Close()
	ctx := context.Background()

	form.Dispatch(ctx, Submit{})

	toast, ok := nextEvent(t, form).(Toast)
	if !ok || toast.Message != "Title and Amount are required" {
		t.Fatalf("got %#v, want validation toast", toast)
	}
	if len(store.saved()) != 0 {
		t.Errorf("invalid submit reached the store")
	}
}

func TestFormInsertFailureSurfacesToast(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("disk full")
	form := NewForm(store, nil)
	defer form.Close()
	ctx := context.Background()

	fillValidForm(ctx, form)
	form.Dispatch(ctx, Submit{})

	toast, ok := nextEvent(t, form).(Toast)
	if !ok {
		t.Fatalf("expected Toast")
	}
	if toast.Message != "Failed to save expense: disk full" {
		t.Errorf("toast = %q", toast.Message)
	}
}

func TestFormDuplicateWatchSetsFlag(t *testing.T) {
	store := newFakeStore()
	form := NewForm(store, nil)
	defer form.Close()
	ctx := context.Background()

	form.Dispatch(ctx, TitleChanged{Value: "Lunch"})
	store.dupCounts <- 1

	deadline := time.Now().Add(time.Second)
	for !form.State().IsDuplicate {
		if time.Now().After(deadline) {
			t.Fatalf("duplicate flag never set")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A duplicate submit must be rejected.
	form.Dispatch(ctx, AmountChanged{Value: "5"})
	form.Dispatch(ctx, Submit{})
	toast, ok := nextEvent(t, form).(Toast)
	if !ok || toast.Message != "Duplicate entry found" {
		t.Fatalf("got %#v, want duplicate toast", toast)
	}
}

func TestFormBlankTitleClearsDuplicate(t *testing.T) {
	store := newFakeStore()
	form := NewForm(store, nil)
	defer form.Close()
	ctx := context.Background()

	form.Dispatch(ctx, TitleChanged{Value: "Lunch"})
	store.dupCounts <- 1
	deadline := time.Now().Add(time.Second)
	for !form.State().IsDuplicate {
		if time.Now().After(deadline) {
			t.Fatalf("duplicate flag never set")
		}
		time.Sleep(5 * time.Millisecond)
	}

	form.Dispatch(ctx, TitleChanged{Value: ""})
	if form.State().IsDuplicate {
		t.Errorf("blank title did not clear the duplicate flag")
	}
}
