package listing

import "sync"

// Task asks a worker to list one directory.
type Task struct {
	Path string
}

// TaskQueue is a FIFO of tasks shared by all workers. A capacity of zero
// means unbounded. Once closed, Pop stops handing out tasks even if some are
// still queued, and pushes are rejected.
type TaskQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []Task
	capacity int
	closed   bool
}

// NewTaskQueue returns an open queue. capacity <= 0 means unbounded.
func NewTaskQueue(capacity int) *TaskQueue {
	if capacity < 0 {
		capacity = 0
	}
	q := &TaskQueue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

func (q *TaskQueue) full() bool {
	return q.capacity > 0 && len(q.items) >= q.capacity
}

// Push adds t, waiting for room if the queue is bounded and full.
// It returns ErrQueueClosed if the queue is closed before t is added.
func (q *TaskQueue) Push(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.full() && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, t)
	q.notEmpty.Signal()
	return nil
}

// Offer adds t without waiting. It returns ErrQueueFull when a bounded queue
// has no room and ErrQueueClosed after Close.
func (q *TaskQueue) Offer(t Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if q.full() {
		return ErrQueueFull
	}
	q.items = append(q.items, t)
	q.notEmpty.Signal()
	return nil
}

// Pop removes the oldest task, waiting until one is available.
// ok is false once the queue has been closed.
func (q *TaskQueue) Pop() (t Task, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if q.closed {
		return Task{}, false
	}
	t = q.items[0]
	q.items[0] = Task{}
	q.items = q.items[1:]
	q.notFull.Signal()
	return t, true
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close wakes every waiter. It is safe to call more than once.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}
