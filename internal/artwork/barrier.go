package artwork

import (
	"context"
	"sync"
)

// Barrier is a counted all-of join over cover completions.
//
// It starts with one hold so completions that race with registration cannot release it
// early; [Barrier.Wait] drops the hold.
type Barrier struct {
	mu       sync.Mutex
	count    int
	pending  int
	released bool
	done     chan struct{}
}

func NewBarrier() *Barrier {
	return &Barrier{count: 1, done: make(chan struct{})}
}

// Add registers a one-shot completion signal on c if it is still pending.
// Complete covers are not counted. Covers added after [Barrier.Wait] are ignored.
func (b *Barrier) Add(c *Cover) {
	if c == nil {
		return
	}

	b.mu.Lock()
	if b.released {
		b.mu.Unlock()
		return
	}
	b.count++
	b.mu.Unlock()

	if c.OnComplete(b.arrive) {
		b.mu.Lock()
		b.pending++
		b.mu.Unlock()
		return
	}
	b.arrive()
}

// Pending is the number of covers that were incomplete when they were added.
func (b *Barrier) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Wait blocks until every added cover has completed or ctx is done.
//
// When nothing was pending it returns immediately, even for a done ctx.
func (b *Barrier) Wait(ctx context.Context) error {
	b.mu.Lock()
	if !b.released {
		b.released = true
		b.mu.Unlock()
		b.arrive()
	} else {
		b.mu.Unlock()
	}

	select {
	case <-b.done:
		return nil
	default:
	}

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Barrier) arrive() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count--
	if b.count == 0 {
		close(b.done)
	}
}
