package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
)

// RecordStore is the slice of the persistence layer the builder needs:
// a single range query plus change notifications. The store is treated
// as externally synchronized.
type RecordStore interface {
	// QueryByDateRange returns records with startMs <= date < endMs
	// (epoch milliseconds), ordered by date descending.
	QueryByDateRange(ctx context.Context, startMs, endMs int64) ([]core.Expense, error)

	// Watch returns a channel that receives a signal after every
	// successful mutation. The channel is closed when ctx is done or
	// the store shuts down.
	Watch(ctx context.Context) <-chan struct{}

	// Version increases monotonically with every mutation.
	Version() uint64
}

// Builder computes one-shot and live reports over a trailing window of
// periodDays ending today. Aggregation is a full recompute per change
// signal; it is cheap relative to how often the store mutates.
type Builder struct {
	store RecordStore
	loc   *time.Location
	log   *slog.Logger

	now func() time.Time // injectable for tests

	// One-shot results are cached per (period, store version) so
	// repeated builds against an unchanged store skip the query.
	oneShot *cache.LRU[Data]

	mu   sync.Mutex
	last *Data // last successfully computed report, any period
}

func NewBuilder(store RecordStore, loc *time.Location, logger *slog.Logger) *Builder {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:   store,
		loc:     loc,
		log:     logger,
		now:     time.Now,
		oneShot: cache.NewLRU[Data](16, 5*time.Minute),
	}
}

// window returns the inclusive calendar window for a trailing period of
// periodDays ending today, plus its display label.
func (b *Builder) window(periodDays int) (start, end time.Time, label string) {
	end = core.DayOf(b.now().In(b.loc))
	start = end.AddDate(0, 0, -(periodDays - 1))
	label = fmt.Sprintf("Last %d days (%s to %s)", periodDays, core.ISODate(start), core.ISODate(end))
	return start, end, label
}

// BuildReport computes a report for the trailing window in a single
// range query. Store failures are surfaced wrapped, never retried.
func (b *Builder) BuildReport(ctx context.Context, periodDays int) (Data, error) {
	start, end, label := b.window(periodDays)

	key := fmt.Sprintf("%d@%d:%s", periodDays, b.store.Version(), core.ISODate(end))
	if cached, ok := b.oneShot.Get(key); ok {
		return cached, nil
	}

	data, err := b.compute(ctx, start, end, label)
	if err != nil {
		return Data{}, err
	}
	b.oneShot.Set(key, data)
	return data, nil
}

// Records returns the raw record sequence backing the trailing window.
// CSV export operates on records, not on the aggregate.
func (b *Builder) Records(ctx context.Context, periodDays int) ([]core.Expense, error) {
	start, end, _ := b.window(periodDays)
	startMs, endMs := core.WindowMillis(start, end)
	records, err := b.store.QueryByDateRange(ctx, startMs, endMs)
	if err != nil {
		return nil, fmt.Errorf("query records for window: %w", err)
	}
	return records, nil
}

// ObserveReport emits a report immediately and again after every store
// change until ctx is cancelled. periodDays is fixed for the lifetime
// of the subscription; observing a different period means cancelling
// and subscribing again.
//
// Cancellation stops the underlying store subscription and closes the
// data channel; no emission follows. A store failure is terminal: it is
// delivered once on the error channel and both channels close. The
// builder never resubscribes on its own.
func (b *Builder) ObserveReport(ctx context.Context, periodDays int) (<-chan Data, <-chan error) {
	out := make(chan Data)
	errc := make(chan error, 1)

	signals := b.store.Watch(ctx)

	go func() {
		defer close(out)
		defer close(errc)

		emit := func() error {
			start, end, label := b.window(periodDays)
			data, err := b.compute(ctx, start, end, label)
			if err != nil {
				return err
			}
			select {
			case out <- data:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		}

		if err := emit(); err != nil {
			b.fail(ctx, errc, err)
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
					b.fail(ctx, errc, err)
					return
				}
			}
		}
	}()

	return out, errc
}

// LastReport returns the most recently computed report, if any. Export
// and share flows consume this so a failed recompute never exposes a
// partial report.
func (b *Builder) LastReport() (Data, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return Data{}, false
	}
	return *b.last, true
}

func (b *Builder) compute(ctx context.Context, start, end time.Time, label string) (Data, error) {
	startMs, endMs := core.WindowMillis(start, end)
	records, err := b.store.QueryByDateRange(ctx, startMs, endMs)
	if err != nil {
		return Data{}, fmt.Errorf("query records for window: %w", err)
	}

	data := Compute(records, start, end, b.loc, label)
	data.GeneratedAt = b.now()

	b.mu.Lock()
	b.last = &data
	b.mu.Unlock()

	b.log.DebugContext(ctx, "report computed",
		"period", label,
		"records", data.TotalExpenses,
		"total", data.TotalAmount)
	return data, nil
}

func (b *Builder) fail(ctx context.Context, errc chan<- error, err error) {
	if ctx.Err() != nil {
		// Cancellation is not a report failure.
		return
	}
	b.log.ErrorContext(ctx, "report observation failed", "error", err)
	errc <- err
}
