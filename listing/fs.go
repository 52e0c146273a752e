package listing

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/time/rate"
)

// FileSystem is the filesystem capability a listing needs.
// Implementations must be safe for concurrent use.
type FileSystem interface {
	Exists(path string) bool
	IsDir(path string) bool
	// ListChildren returns the full paths of the entries directly below path.
	ListChildren(path string) ([]string, error)
}

// Entry is a directory child together with its type.
type Entry struct {
	Path string
	Dir  bool
}

// DirReader is implemented by filesystems that learn entry types while
// listing, saving an IsDir lookup per child.
type DirReader interface {
	ReadDir(path string) ([]Entry, error)
}

// ContextDirReader is implemented by filesystems whose reads may wait, such
// as ThrottledFS. The wait ends early when ctx is done.
type ContextDirReader interface {
	ReadDirContext(ctx context.Context, path string) ([]Entry, error)
}

// RootResolver is implemented by filesystems that follow a symbolic link
// given as the listing root, the way find -H does. Links below the root are
// still not followed.
type RootResolver interface {
	IsDirRoot(path string) bool
}

// isRootDir reports whether root should be listed as a directory.
func isRootDir(fsys FileSystem, root string) bool {
	if rr, ok := fsys.(RootResolver); ok {
		return rr.IsDirRoot(root)
	}
	return fsys.IsDir(root)
}

// readEntries lists dir through ReadDirContext or ReadDir when available,
// otherwise through ListChildren plus one IsDir call per child.
func readEntries(ctx context.Context, fsys FileSystem, dir string) ([]Entry, error) {
	if cr, ok := fsys.(ContextDirReader); ok {
		return cr.ReadDirContext(ctx, dir)
	}
	if dr, ok := fsys.(DirReader); ok {
		return dr.ReadDir(dir)
	}
	children, err := fsys.ListChildren(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(children))
	for i, child := range children {
		entries[i] = Entry{Path: child, Dir: fsys.IsDir(child)}
	}
	return entries, nil
}

// OSFS reads the host filesystem. Symbolic links are reported but never
// followed, so a link to a directory is listed as a plain entry. A root that
// is a link to a directory is the exception: see IsDirRoot.
type OSFS struct{}

// Exists reports whether path names an entry, including a dangling link.
func (OSFS) Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// IsDir reports whether path is a directory without following links.
func (OSFS) IsDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}

// IsDirRoot reports whether path is a directory after following links.
func (OSFS) IsDirRoot(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ListChildren returns the joined paths of the entries in path.
func (OSFS) ListChildren(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	children := make([]string, len(entries))
	for i, e := range entries {
		children[i] = filepath.Join(path, e.Name())
	}
	return children, nil
}

// ReadDir lists path and types each entry from the directory read itself.
func (OSFS) ReadDir(path string) ([]Entry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = Entry{Path: filepath.Join(path, e.Name()), Dir: e.IsDir()}
	}
	return out, nil
}

// ThrottledFS limits how many directories are listed per second.
// Existence and type checks are not throttled.
type ThrottledFS struct {
	FileSystem
	limiter *rate.Limiter
}

// Throttle wraps fsys so that at most perSecond listings happen per second,
// with bursts of up to burst. A non-positive rate returns fsys unchanged.
func Throttle(fsys FileSystem, perSecond float64, burst int) FileSystem {
	if perSecond <= 0 {
		return fsys
	}
	if burst < 1 {
		burst = 1
	}
	return &ThrottledFS{
		FileSystem: fsys,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// ListChildren waits for a token, then lists path.
func (t *ThrottledFS) ListChildren(path string) ([]string, error) {
	if err := t.limiter.Wait(context.Background()); err != nil {
		return nil, err
	}
	return t.FileSystem.ListChildren(path)
}

// ReadDir waits for a token, then lists path with entry types.
func (t *ThrottledFS) ReadDir(path string) ([]Entry, error) {
	return t.ReadDirContext(context.Background(), path)
}

// ReadDirContext is ReadDir with a wait that gives up when ctx is done.
func (t *ThrottledFS) ReadDirContext(ctx context.Context, path string) ([]Entry, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return readEntries(ctx, t.FileSystem, path)
}

// IsDirRoot defers to the wrapped filesystem's root rules.
func (t *ThrottledFS) IsDirRoot(path string) bool {
	return isRootDir(t.FileSystem, path)
}
