// Package cmd provides the command-line interface implementation for dirlist.
//
// This package contains all the subcommand implementations for the dirlist CLI tool.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - list: Parallel listing of a directory tree
//   - count: Entry counting on top of the parallel lister
//   - bench: Serial, goroutine-per-directory, errgroup and worker pool comparison
//   - seed: Test tree generation
//
// list, count and bench share their traversal flags. Values come from the
// YAML config file first and from flags the user set explicitly second.
//
// The package leverages the listing package for traversal and the internal
// config, logger and report packages for the ambient concerns.
package cmd
