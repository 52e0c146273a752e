// Package main provides the dirlist command-line interface.
//
// dirlist lists directory trees in parallel. A fixed pool of workers pulls
// directories from a shared queue, records every child path exactly once and
// queues the child directories it finds. The listing is complete when no
// directory is queued or being read.
//
// The main binary supports multiple subcommands:
//   - list: Print every path below a directory
//   - count: Count entries, directories and files in a tree
//   - bench: Compare serial, goroutine-per-directory and pooled listing
//   - seed: Generate a test directory tree
//
// Interrupting the process cancels the running listing; list still writes
// the paths it found before exiting with an error.
package main
