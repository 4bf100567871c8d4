package storage

import (
	"context"
	"sync"
	"sync/atomic"
)

// notifier fans change signals out to watchers. Subscriber channels are
// buffered with capacity 1 and sends never block, so a burst of
// mutations coalesces into a single pending signal; the watcher's next
// query always sees the latest snapshot.
type notifier struct {
	version atomic.Uint64

	mu   sync.Mutex
	subs map[uint64]chan struct{}
	next uint64
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[uint64]chan struct{})}
}

func (n *notifier) notify() {
	n.version.Add(1)

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// watch registers a subscriber tied to ctx. The returned channel is
// closed as soon as ctx is done; unsubscription is immediate.
func (n *notifier) watch(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
		close(ch)
	}()

	return ch
}
