package listing

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// State is the phase of a single List call.
type State int

const (
	StateIdle State = iota
	StateSeeding
	StateRunning
	StateDraining
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeding:
		return "seeding"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Lister.
type Options struct {
	// Workers is the pool size. Zero means runtime.NumCPU().
	Workers int
	// QueueCapacity bounds the task queue. Zero means unbounded.
	QueueCapacity int
	// Timeout bounds each List call. Zero means no limit beyond ctx.
	Timeout time.Duration
	// FS defaults to OSFS.
	FS FileSystem
	// Recorder receives progress events. Nil discards them.
	Recorder Recorder
}

// Stats describes one List call.
type Stats struct {
	Run     string
	Workers int
	Tasks   int64
	Errors  int64
	Elapsed time.Duration
}

// Result is the outcome of a List call.
type Result struct {
	Paths Set
	Stats Stats
}

// Lister lists directory trees with a bounded worker pool.
// A Lister holds no per-call state and may be used concurrently.
type Lister struct {
	opts Options
}

// New validates opts and fills in defaults.
func New(opts Options) (*Lister, error) {
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, opts.Workers)
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.QueueCapacity < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, opts.QueueCapacity)
	}
	if opts.FS == nil {
		opts.FS = OSFS{}
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Lister{opts: opts}, nil
}

// Workers returns the configured pool size.
func (l *Lister) Workers() int {
	return l.opts.Workers
}

// List returns root and every path below it. A missing root yields an empty
// set and a plain file yields just the root; neither starts a worker.
// Unreadable directories are recorded and skipped. A root that is a link
// to a directory is listed when the FileSystem implements RootResolver.
//
// If ctx ends or the timeout expires first, the pool is stopped and the paths
// found so far are returned with an error wrapping ErrIncomplete. A worker
// defect returns an error wrapping ErrInvariantViolation.
func (l *Lister) List(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	run := uuid.NewString()
	state := func(s State) {
		l.opts.Recorder.Record(Event{Kind: EventStateChange, Run: run, Path: root, State: s})
	}
	finish := func(rs *ResultSet, p *Pool) *Result {
		res := &Result{Paths: Set{}, Stats: Stats{Run: run, Elapsed: time.Since(start)}}
		if rs != nil {
			res.Paths = rs.ToSet()
		}
		if p != nil {
			res.Stats.Workers = p.cfg.Workers
			res.Stats.Tasks = p.Tasks()
			res.Stats.Errors = p.Errors()
		}
		state(StateDone)
		return res
	}

	state(StateIdle)
	if l.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
	}

	state(StateSeeding)
	fsys := l.opts.FS
	if !fsys.Exists(root) {
		return finish(nil, nil), nil
	}
	results := NewResultSet()
	results.Add(root)
	if !isRootDir(fsys, root) {
		return finish(results, nil), nil
	}

	queue := NewTaskQueue(l.opts.QueueCapacity)
	tracker := NewTracker()
	pool, err := NewPool(PoolConfig{
		Workers:  l.opts.Workers,
		Queue:    queue,
		Tracker:  tracker,
		Results:  results,
		FS:       fsys,
		Recorder: l.opts.Recorder,
		Run:      run,
	})
	if err != nil {
		return nil, err
	}
	tracker.Increment(1)
	if err := queue.Push(Task{Path: root}); err != nil {
		return nil, err
	}
	if err := pool.Start(); err != nil {
		return nil, err
	}

	state(StateRunning)
	waitErr := awaitIdle(ctx, tracker, pool)

	state(StateDraining)
	stopErr := pool.Shutdown()

	res := finish(results, pool)
	switch {
	case stopErr != nil:
		return res, stopErr
	case waitErr != nil:
		return res, fmt.Errorf("%w: %w", ErrIncomplete, waitErr)
	}
	return res, nil
}

// awaitIdle waits for the tracker to reach zero, giving up early when ctx
// ends or a worker fails.
func awaitIdle(ctx context.Context, tracker *Tracker, pool *Pool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-pool.Failed():
			cancel()
		case <-ctx.Done():
		}
	}()
	return tracker.AwaitZero(ctx)
}

// List lists root with default options.
func List(ctx context.Context, root string) (Set, error) {
	l, err := New(Options{})
	if err != nil {
		return nil, err
	}
	res, err := l.List(ctx, root)
	if res == nil {
		return nil, err
	}
	return res.Paths, err
}
