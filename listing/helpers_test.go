package listing

import (
	"fmt"
	"path"
	"sync"
)

// buildTree fills dir with files and, while depth > 0, with subdirectories
// built the same way. It returns how many paths were created below dir.
func buildTree(m *MemFS, dir string, depth, dirs, files int) int {
	m.AddDir(dir)
	created := 0
	for i := range files {
		m.AddFile(path.Join(dir, fmt.Sprintf("file%02d.json", i)))
		created++
	}
	if depth == 0 {
		return created
	}
	for i := range dirs {
		sub := path.Join(dir, fmt.Sprintf("dir%02d", i))
		created += 1 + buildTree(m, sub, depth-1, dirs, files)
	}
	return created
}

// eventLog is a Recorder that keeps every event.
type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Record(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) count(kind EventKind) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, e := range l.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (l *eventLog) states() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []State
	for _, e := range l.events {
		if e.Kind == EventStateChange {
			out = append(out, e.State)
		}
	}
	return out
}

// recoverErr runs f and returns the error it panicked with, if any.
func recoverErr(f func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("non-error panic: %v", r)
		}
	}()
	f()
	return nil
}

// panicFS panics while listing one directory.
type panicFS struct {
	*MemFS
	path string
}

func (p panicFS) ListChildren(dir string) ([]string, error) {
	if dir == p.path {
		panic("listing exploded")
	}
	return p.MemFS.ListChildren(dir)
}
