package listing

import (
	"sync"

	"github.com/taigrr/colorhash"
)

// Set is a snapshot of discovered paths.
type Set map[string]struct{}

// Has reports whether p is in the set.
func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

const resultShards = 32

// ResultSet is a concurrent, deduplicating set of paths. Paths are spread
// over independently locked shards so workers adding siblings rarely contend.
type ResultSet struct {
	shards [resultShards]resultShard
}

type resultShard struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewResultSet returns an empty ResultSet.
func NewResultSet() *ResultSet {
	s := &ResultSet{}
	for i := range s.shards {
		s.shards[i].paths = make(map[string]struct{})
	}
	return s
}

func (s *ResultSet) shard(p string) *resultShard {
	h := uint64(colorhash.HashString(p))
	return &s.shards[h%resultShards]
}

// Add inserts p and reports whether this call inserted it.
func (s *ResultSet) Add(p string) bool {
	sh := s.shard(p)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.paths[p]; ok {
		return false
	}
	sh.paths[p] = struct{}{}
	return true
}

// Len returns the number of paths. Concurrent adds may or may not be counted.
func (s *ResultSet) Len() int {
	n := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		n += len(sh.paths)
		sh.mu.Unlock()
	}
	return n
}

// ToSet returns a copy of the current contents.
func (s *ResultSet) ToSet() Set {
	out := make(Set, s.Len())
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		for p := range sh.paths {
			out[p] = struct{}{}
		}
		sh.mu.Unlock()
	}
	return out
}
