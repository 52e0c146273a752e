package listing

import (
	"context"
	"sync"
)

// Tracker counts tasks that have been counted but not yet finished.
// Producers call Increment before a task becomes visible to workers and a
// worker calls Decrement only after every child it produced is counted, so
// the count is never zero while work is in flight.
type Tracker struct {
	mu      sync.Mutex
	pending int64
	// idle is closed while pending is zero and replaced when work starts.
	idle chan struct{}
}

// NewTracker returns a tracker with nothing pending.
func NewTracker() *Tracker {
	idle := make(chan struct{})
	close(idle)
	return &Tracker{idle: idle}
}

// Increment adds n pending tasks.
func (t *Tracker) Increment(n int64) {
	if n < 0 {
		invariantf("increment by negative amount %d", n)
	}
	if n == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == 0 {
		t.idle = make(chan struct{})
	}
	t.pending += n
}

// Decrement marks n tasks finished. Finishing more tasks than were counted
// panics with ErrInvariantViolation.
func (t *Tracker) Decrement(n int64) {
	if n < 0 {
		invariantf("decrement by negative amount %d", n)
	}
	if n == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if n > t.pending {
		invariantf("decrement by %d with %d pending", n, t.pending)
	}
	t.pending -= n
	if t.pending == 0 {
		close(t.idle)
	}
}

// Pending returns the current count.
func (t *Tracker) Pending() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// AwaitZero blocks until nothing is pending or ctx is done.
// It returns immediately if nothing is pending at call time.
func (t *Tracker) AwaitZero(ctx context.Context) error {
	for {
		t.mu.Lock()
		if t.pending == 0 {
			t.mu.Unlock()
			return nil
		}
		idle := t.idle
		t.mu.Unlock()

		select {
		case <-idle:
			// re-check: new work may have been counted since the close
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
