// Package report writes listing results to stdout or to files shared with
// other dirlist processes.
package report

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"

	"github.com/dendrascience/dirlist/listing"
)

// Sorted returns the paths of set in lexical order.
func Sorted(set listing.Set) []string {
	paths := make([]string, 0, len(set))
	for p := range set {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Write prints one path per line in lexical order.
func Write(w io.Writer, set listing.Set) error {
	bw := bufio.NewWriter(w)
	for _, p := range Sorted(set) {
		if _, err := fmt.Fprintln(bw, p); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile replaces path with the sorted listing. Writers coordinate
// through an exclusive lock on path+".lock", and readers never see a
// partially written file.
func WriteFile(path string, set listing.Set) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", path, err)
	}
	defer lock.Unlock()

	var buf bytes.Buffer
	if err := Write(&buf, set); err != nil {
		return err
	}
	return atomicWrite(path, buf.Bytes())
}

func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}
	return nil
}

// Summary is the per-kind breakdown printed by the count command.
type Summary struct {
	Entries int
	Dirs    int
	Files   int
}

// Summarize classifies every path in set with fsys.
func Summarize(fsys listing.FileSystem, set listing.Set) Summary {
	s := Summary{Entries: len(set)}
	for p := range set {
		if fsys.IsDir(p) {
			s.Dirs++
		} else {
			s.Files++
		}
	}
	return s
}
