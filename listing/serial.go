package listing

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ListSerial lists root depth-first on the calling goroutine. It follows the
// same rules as Lister.List and is the reference the pool is checked against.
// Unreadable directories are skipped; their errors are passed to onErr when
// it is non-nil.
func ListSerial(fsys FileSystem, root string, onErr func(*TraversalError)) Set {
	paths := Set{}
	if !fsys.Exists(root) {
		return paths
	}
	paths[root] = struct{}{}
	if isRootDir(fsys, root) {
		listSerial(fsys, root, paths, onErr)
	}
	return paths
}

func listSerial(fsys FileSystem, dir string, paths Set, onErr func(*TraversalError)) {
	entries, err := readEntries(context.Background(), fsys, dir)
	if err != nil {
		if onErr != nil {
			onErr(&TraversalError{Path: dir, Op: "list", Err: err})
		}
		return
	}
	for _, e := range entries {
		if paths.Has(e.Path) {
			continue
		}
		paths[e.Path] = struct{}{}
		if e.Dir {
			listSerial(fsys, e.Path, paths, onErr)
		}
	}
}

// ListSpawn lists root with one goroutine per directory, all writing to a
// single mutex-guarded set. Goroutine count grows with the tree; it exists to
// benchmark against the pool.
func ListSpawn(fsys FileSystem, root string) Set {
	paths := Set{}
	if !fsys.Exists(root) {
		return paths
	}
	paths[root] = struct{}{}
	if !isRootDir(fsys, root) {
		return paths
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	var spawn func(dir string)
	spawn = func(dir string) {
		defer wg.Done()
		entries, err := readEntries(context.Background(), fsys, dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			mu.Lock()
			fresh := !paths.Has(e.Path)
			paths[e.Path] = struct{}{}
			mu.Unlock()
			if fresh && e.Dir {
				wg.Add(1)
				go spawn(e.Path)
			}
		}
	}

	wg.Add(1)
	go spawn(root)
	wg.Wait()
	return paths
}

// ListExecutor lists root with at most workers goroutines from an errgroup.
// When every slot is taken the goroutine that found a directory lists it
// itself. workers <= 0 means runtime.NumCPU().
func ListExecutor(fsys FileSystem, root string, workers int) Set {
	paths := Set{}
	if !fsys.Exists(root) {
		return paths
	}
	paths[root] = struct{}{}
	if !isRootDir(fsys, root) {
		return paths
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(workers)
	var visit func(dir string)
	visit = func(dir string) {
		entries, err := readEntries(context.Background(), fsys, dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			mu.Lock()
			fresh := !paths.Has(e.Path)
			paths[e.Path] = struct{}{}
			mu.Unlock()
			if !fresh || !e.Dir {
				continue
			}
			if !g.TryGo(func() error { visit(e.Path); return nil }) {
				visit(e.Path)
			}
		}
	}

	visit(root)
	g.Wait()
	return paths
}
