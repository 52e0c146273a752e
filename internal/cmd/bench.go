package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dendrascience/dirlist/internal/logger"
	"github.com/dendrascience/dirlist/listing"
)

const (
	defaultWarmupRounds = 10
	defaultTimedRounds  = 20
)

// benchMode is one listing strategy under benchmark.
type benchMode struct {
	name string
	run  func(ctx context.Context, root string) (listing.Set, error)
}

// NewBenchCmd creates and returns the bench subcommand for the dirlist CLI.
func NewBenchCmd() *cobra.Command {
	var (
		flags  listerFlags
		warmup int
		rounds int
	)

	cmd := &cobra.Command{
		Use:   "bench [PATH]",
		Short: "Compare listing strategies on a directory tree",
		Long: `Benchmark the serial lister, the goroutine-per-directory lister, the
errgroup-limited lister and the worker pool lister against the same tree.
Every strategy reads through the same filesystem, so list_rate applies to
all of them.

Each strategy is checked against the serial result, run for --warmup
untimed rounds and then --rounds timed rounds. The average time per
round is printed in milliseconds.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			if warmup < 0 || rounds <= 0 {
				return fmt.Errorf("warmup must be non-negative and rounds positive, got %d and %d", warmup, rounds)
			}
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			fsys := configFS(cfg)
			l, err := newLister(cfg, fsys, log, nil)
			if err != nil {
				return err
			}
			log.Infof("benchmarking %s with %d workers", root, l.Workers())
			return runBench(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), root, warmup, rounds, benchModes(fsys, l))
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&warmup, "warmup", defaultWarmupRounds, "Untimed rounds per strategy")
	cmd.Flags().IntVar(&rounds, "rounds", defaultTimedRounds, "Timed rounds per strategy")

	return cmd
}

// benchModes returns every strategy reading through fsys, the filesystem l
// lists, so all of them share one rate limit.
func benchModes(fsys listing.FileSystem, l *listing.Lister) []benchMode {
	return []benchMode{
		{name: "Serial", run: func(_ context.Context, root string) (listing.Set, error) {
			return listing.ListSerial(fsys, root, nil), nil
		}},
		{name: "Spawn", run: func(_ context.Context, root string) (listing.Set, error) {
			return listing.ListSpawn(fsys, root), nil
		}},
		{name: "Executor", run: func(_ context.Context, root string) (listing.Set, error) {
			return listing.ListExecutor(fsys, root, l.Workers()), nil
		}},
		{name: "Queue", run: func(ctx context.Context, root string) (listing.Set, error) {
			res, err := l.List(ctx, root)
			if err != nil {
				return nil, err
			}
			return res.Paths, nil
		}},
	}
}

// runBench times every mode against the first mode's result. A mode that
// disagrees is reported on errOut and still timed.
func runBench(ctx context.Context, out, errOut io.Writer, root string, warmup, rounds int, modes []benchMode) error {
	if len(modes) == 0 {
		return nil
	}
	expected, err := modes[0].run(ctx, root)
	if err != nil {
		return err
	}

	var mismatched []string
	for _, mode := range modes {
		fmt.Fprintf(out, "%20s: ", mode.name)

		actual, err := mode.run(ctx, root)
		if err != nil {
			fmt.Fprintln(out)
			return fmt.Errorf("%s: %w", mode.name, err)
		}
		if !sameSet(expected, actual) {
			fmt.Fprintf(errOut, "Unexpected results! Expected %d elements, found %d elements.\n", len(expected), len(actual))
			mismatched = append(mismatched, mode.name)
		}

		for range warmup {
			if _, err := mode.run(ctx, root); err != nil {
				fmt.Fprintln(out)
				return fmt.Errorf("%s: %w", mode.name, err)
			}
		}

		start := time.Now()
		for range rounds {
			if _, err := mode.run(ctx, root); err != nil {
				fmt.Fprintln(out)
				return fmt.Errorf("%s: %w", mode.name, err)
			}
		}
		elapsed := time.Since(start)

		average := float64(elapsed.Microseconds()) / 1000 / float64(rounds)
		fmt.Fprintf(out, "%8.2fms\n", average)
	}

	if len(mismatched) > 0 {
		return fmt.Errorf("results differ from %s for %v", modes[0].name, mismatched)
	}
	return nil
}

func sameSet(a, b listing.Set) bool {
	if len(a) != len(b) {
		return false
	}
	for p := range a {
		if !b.Has(p) {
			return false
		}
	}
	return true
}
