package listing

import (
	"io/fs"
	"path"
	"strings"
	"sync"
	"sync/atomic"
)

// MemFS is an in-memory FileSystem with slash-separated paths. Besides plain
// trees it can fail or hold up individual directory listings, which makes the
// scheduling-sensitive parts of a listing testable.
type MemFS struct {
	mu    sync.RWMutex
	nodes map[string]*memNode
	fails map[string]error
	gates map[string]*Gate
	reads atomic.Int64
}

type memNode struct {
	dir      bool
	children []string
}

// NewMemFS returns an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		nodes: make(map[string]*memNode),
		fails: make(map[string]error),
		gates: make(map[string]*Gate),
	}
}

// AddDir creates a directory and any missing parents.
func (m *MemFS) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(path.Clean(p), true)
}

// AddFile creates a file and any missing parent directories.
func (m *MemFS) AddFile(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensure(path.Clean(p), false)
}

func (m *MemFS) ensure(p string, dir bool) *memNode {
	if n, ok := m.nodes[p]; ok {
		n.dir = n.dir || dir
		return n
	}
	n := &memNode{dir: dir}
	m.nodes[p] = n
	if parent := path.Dir(p); parent != p {
		pn := m.ensure(parent, true)
		pn.children = append(pn.children, p)
	}
	return n
}

// Remove deletes p and everything below it, as if another process removed
// the subtree while a listing was running.
func (m *MemFS) Remove(p string) {
	p = path.Clean(p)
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := p + "/"
	for name := range m.nodes {
		if name == p || strings.HasPrefix(name, prefix) {
			delete(m.nodes, name)
		}
	}
	if pn, ok := m.nodes[path.Dir(p)]; ok {
		kept := pn.children[:0]
		for _, c := range pn.children {
			if c != p {
				kept = append(kept, c)
			}
		}
		pn.children = kept
	}
}

// FailOn makes every listing of p return err.
func (m *MemFS) FailOn(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fails[path.Clean(p)] = err
}

// Block holds every listing of p until the returned gate is released.
func (m *MemFS) Block(p string) *Gate {
	g := &Gate{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	m.mu.Lock()
	m.gates[path.Clean(p)] = g
	m.mu.Unlock()
	return g
}

// Reads returns how many times ListChildren has been called.
func (m *MemFS) Reads() int64 {
	return m.reads.Load()
}

func (m *MemFS) Exists(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.nodes[path.Clean(p)]
	return ok
}

func (m *MemFS) IsDir(p string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[path.Clean(p)]
	return ok && n.dir
}

func (m *MemFS) ListChildren(p string) ([]string, error) {
	m.reads.Add(1)
	p = path.Clean(p)

	m.mu.RLock()
	gate := m.gates[p]
	m.mu.RUnlock()
	if gate != nil {
		gate.wait()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.fails[p]; ok {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: err}
	}
	n, ok := m.nodes[p]
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrNotExist}
	}
	if !n.dir {
		return nil, &fs.PathError{Op: "readdir", Path: p, Err: fs.ErrInvalid}
	}
	return append([]string(nil), n.children...), nil
}

// Gate holds a directory listing until Release is called.
type Gate struct {
	entered     chan struct{}
	release     chan struct{}
	enterOnce   sync.Once
	releaseOnce sync.Once
}

// Entered is closed once a listing has reached the gate.
func (g *Gate) Entered() <-chan struct{} {
	return g.entered
}

// Release lets held and future listings continue. Safe to call more than once.
func (g *Gate) Release() {
	g.releaseOnce.Do(func() { close(g.release) })
}

func (g *Gate) wait() {
	g.enterOnce.Do(func() { close(g.entered) })
	<-g.release
}
