package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dendrascience/dirlist/internal/logger"
	"github.com/dendrascience/dirlist/internal/report"
	"github.com/dendrascience/dirlist/listing"
)

// NewCountCmd creates and returns the count subcommand for the dirlist CLI.
// It provides entry counting for directory trees.
func NewCountCmd() *cobra.Command {
	var (
		flags listerFlags
		path  string
	)

	cmd := &cobra.Command{
		Use:   "count [PATH]",
		Short: "Count entries in a directory tree",
		Long: `Count the entries in a directory tree.

This lists the tree with the parallel lister and prints how many entries
were found, split into directories and everything else. The root is
counted as a directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				path = args[0]
			}
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			l, err := newLister(cfg, configFS(cfg), log, nil)
			if err != nil {
				return err
			}
			return runCount(cmd.Context(), l, path, cmd.OutOrStdout())
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&path, "path", "p", "./", "Path to count entries in")

	return cmd
}

func runCount(ctx context.Context, l *listing.Lister, path string, out io.Writer) error {
	res, err := l.List(ctx, path)
	if res == nil {
		return err
	}

	s := report.Summarize(listing.OSFS{}, res.Paths)
	fmt.Fprintf(out, "Total entries: %d\n", s.Entries)
	fmt.Fprintf(out, "Directories: %d\n", s.Dirs)
	fmt.Fprintf(out, "Files: %d\n", s.Files)
	return err
}
