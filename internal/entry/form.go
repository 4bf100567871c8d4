package entry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"expensetracker/internal/core"
)

// Store is the slice of the record store the form needs.
type Store interface {
	Insert(ctx context.Context, e core.Expense) error
	// WatchDuplicates emits the live duplicate count for an exact
	// timestamp and case-insensitive title/category match.
	WatchDuplicates(ctx context.Context, dateMs int64, title, category string) <-chan int
}

// Form owns one entry session: it applies actions through the pure
// reducer, runs the side effects the events ask for, and keeps the
// duplicate flag live against the store.
type Form struct {
	store Store
	log   *slog.Logger

	mu    sync.Mutex
	state State
	date  time.Time

	events chan Event

	dupCancel context.CancelFunc
}

func NewForm(store Store, logger *slog.Logger) *Form {
	if logger == nil {
		logger = slog.Default()
	}
	return &Form{
		store:  store,
		log:    logger,
		state:  InitialState(),
		date:   time.Now(),
		events: make(chan Event, 8),
	}
}

// SetDate fixes the record timestamp for this session. The duplicate
// check matches this exact timestamp, not the calendar day: two entries
// on the same day at different times are never flagged.
func (f *Form) SetDate(date time.Time) {
	f.mu.Lock()
	f.date = date
	f.mu.Unlock()
}

// State returns a snapshot of the current form state.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Events delivers one-shot outbound events (toasts, save confirmation).
func (f *Form) Events() <-chan Event {
	return f.events
}

// Dispatch applies an action and runs any effects its events request.
func (f *Form) Dispatch(ctx context.Context, a Action) {
	f.mu.Lock()
	prev := f.state
	next, events := Reduce(f.state, a)
	f.state = next
	date := f.date
	f.mu.Unlock()

	if next.Title != prev.Title || next.Category != prev.Category {
		f.restartDuplicateWatch(ctx, date, next.Title, next.Category)
	}

	for _, ev := range events {
		switch ev := ev.(type) {
		case SaveRequested:
			f.save(ctx, next, date)
		default:
			f.emit(ev)
		}
	}
}

// Close stops the duplicate watch and the event stream.
func (f *Form) Close() {
	f.mu.Lock()
	cancel := f.dupCancel
	f.dupCancel = nil
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	close(f.events)
}

func (f *Form) save(ctx context.Context, s State, date time.Time) {
	amount, err := core.ParseAmount(s.Amount)
	if err != nil {
		// Reduce validated already; reaching this means the state was
		// mutated between validate and save.
		f.emit(Toast{Message: "Invalid amount"})
		return
	}

	e := core.NewExpense(s.Title, amount, s.Category, strings.TrimSpace(s.Notes), s.ReceiptURI, date)
	if err := e.Validate(); err != nil {
		f.emit(Toast{Message: err.Error()})
		return
	}

	if err := f.store.Insert(ctx, e); err != nil {
		f.log.ErrorContext(ctx, "expense insert failed", "error", err, "title", e.Title)
		f.emit(Toast{Message: fmt.Sprintf("Failed to save expense: %v", err)})
		return
	}

	f.emit(Toast{Message: "Expense added successfully"})
	f.emit(Saved{ID: e.ID})
}

// restartDuplicateWatch replaces the live duplicate subscription with
// one matching the latest title/category pair. Blank titles never
// count as duplicates.
func (f *Form) restartDuplicateWatch(ctx context.Context, date time.Time, title, category string) {
	f.mu.Lock()
	if f.dupCancel != nil {
		f.dupCancel()
		f.dupCancel = nil
	}
	if strings.TrimSpace(title) == "" {
		f.state.IsDuplicate = false
		f.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(ctx)
	f.dupCancel = cancel
	f.mu.Unlock()

	counts := f.store.WatchDuplicates(watchCtx, date.UnixMilli(), title, category)
	go func() {
		for count := range counts {
			f.mu.Lock()
			f.state.IsDuplicate = count > 0
			f.mu.Unlock()
		}
	}()
}

func (f *Form) emit(ev Event) {
	select {
	case f.events <- ev:
	default:
		f.log.Warn("entry event dropped", "event", fmt.Sprintf("%T", ev))
	}
}
