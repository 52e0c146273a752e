package listing

import (
	"errors"
	"fmt"
)

// Sentinel errors for package listing.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Traversal outcome errors
	ErrIncomplete         = errors.New("listing stopped before all directories were read")
	ErrInvariantViolation = errors.New("listing invariant violated")

	// Queue errors
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")

	// Pool errors
	ErrPoolClosed     = errors.New("worker pool is shut down")
	ErrPoolStarted    = errors.New("worker pool already started")
	ErrInvalidWorkers = errors.New("worker count must be positive")

	// Option errors
	ErrInvalidCapacity = errors.New("queue capacity must not be negative")
)

// TraversalError reports a directory that could not be read. It is recorded
// and counted, never returned from List: the subtree below Path is skipped.
type TraversalError struct {
	Path string
	Op   string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// invariantf panics with an error wrapping ErrInvariantViolation.
// Worker loops recover it and hand it back to the caller of List.
func invariantf(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...)))
}
