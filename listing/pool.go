package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// PoolConfig wires a Pool to the shared state of one listing.
type PoolConfig struct {
	Workers  int
	Queue    *TaskQueue
	Tracker  *Tracker
	Results  *ResultSet
	FS       FileSystem
	Recorder Recorder
	Run      string
}

// Pool runs a fixed number of workers that take tasks from the queue, list
// the task's directory, record every child and queue each new subdirectory.
type Pool struct {
	cfg PoolConfig

	mu      sync.Mutex
	started bool
	group   errgroup.Group

	// ctx bounds filesystem waits and is cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc

	stopping atomic.Bool
	stopOnce sync.Once
	stopErr  error

	failed   chan struct{}
	failOnce sync.Once

	tasks atomic.Int64
	errs  atomic.Int64
}

// NewPool validates cfg and returns a pool that has not started yet.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, cfg.Workers)
	}
	if cfg.Queue == nil || cfg.Tracker == nil || cfg.Results == nil {
		return nil, errors.New("pool needs a queue, a tracker and a result set")
	}
	if cfg.FS == nil {
		cfg.FS = OSFS{}
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{cfg: cfg, ctx: ctx, cancel: cancel, failed: make(chan struct{})}, nil
}

// Start launches the workers.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopping.Load() {
		return ErrPoolClosed
	}
	if p.started {
		return ErrPoolStarted
	}
	p.started = true
	for id := 1; id <= p.cfg.Workers; id++ {
		p.group.Go(func() error { return p.work(id) })
	}
	return nil
}

// Failed is closed when a worker dies from a defect.
func (p *Pool) Failed() <-chan struct{} {
	return p.failed
}

// Tasks returns how many tasks have started.
func (p *Pool) Tasks() int64 { return p.tasks.Load() }

// Errors returns how many directories could not be read.
func (p *Pool) Errors() int64 { return p.errs.Load() }

// Shutdown stops the workers after their current task, wakes any worker
// waiting for a task or for a throttled read and waits for all of them to
// exit. Queued tasks are
// abandoned. It returns the first worker defect, if any, and is safe to call
// more than once.
func (p *Pool) Shutdown() error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopping.Store(true)
		started := p.started
		p.mu.Unlock()

		p.cancel()
		p.cfg.Queue.Close()
		if started {
			p.stopErr = p.group.Wait()
		}
		p.cfg.Recorder.Record(Event{Kind: EventPoolShutdown, Run: p.cfg.Run, Err: p.stopErr})
	})
	return p.stopErr
}

func (p *Pool) work(id int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = defect(id, r)
			p.failOnce.Do(func() { close(p.failed) })
		}
	}()

	for {
		t, ok := p.cfg.Queue.Pop()
		if !ok {
			return nil
		}
		p.run(id, t)
	}
}

// run lists one directory. The task's own count is released last, after
// every child subdirectory has been counted.
func (p *Pool) run(id int, t Task) {
	p.tasks.Add(1)
	p.cfg.Recorder.Record(Event{Kind: EventTaskStart, Run: p.cfg.Run, Worker: id, Path: t.Path})

	entries, err := readEntries(p.ctx, p.cfg.FS, t.Path)
	if err != nil {
		p.errs.Add(1)
		p.cfg.Recorder.Record(Event{
			Kind:   EventTaskError,
			Run:    p.cfg.Run,
			Worker: id,
			Path:   t.Path,
			Err:    &TraversalError{Path: t.Path, Op: "list", Err: err},
		})
	}

	for _, e := range entries {
		if !p.cfg.Results.Add(e.Path) || !e.Dir {
			continue
		}
		p.cfg.Tracker.Increment(1)
		p.submit(id, Task{Path: e.Path})
	}

	p.cfg.Tracker.Decrement(1)
}

// submit queues a counted child task. When a bounded queue is full the
// worker lists the child itself rather than wait for room, since every
// other worker may be waiting on the same queue.
func (p *Pool) submit(id int, child Task) {
	err := p.cfg.Queue.Offer(child)
	switch {
	case err == nil:
	case errors.Is(err, ErrQueueFull) && !p.stopping.Load():
		p.run(id, child)
	default:
		// shutting down: the child is dropped
		p.cfg.Tracker.Decrement(1)
	}
}

func defect(id int, r any) error {
	if err, ok := r.(error); ok && errors.Is(err, ErrInvariantViolation) {
		return fmt.Errorf("worker %d: %w", id, err)
	}
	return fmt.Errorf("%w: worker %d panicked: %v", ErrInvariantViolation, id, r)
}
