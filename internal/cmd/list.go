package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dendrascience/dirlist/internal/logger"
	"github.com/dendrascience/dirlist/internal/report"
	"github.com/dendrascience/dirlist/listing"
)

// NewListCmd creates and returns the list subcommand for the dirlist CLI.
func NewListCmd() *cobra.Command {
	var (
		flags  listerFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "list [PATH]",
		Short: "List every path below a directory",
		Long: `List a directory tree in parallel and print every path, one per line,
in lexical order. The root itself is included.

Symbolic links below the root are reported but never followed. A root that
is itself a link to a directory is listed. Directories that cannot be
read are logged and skipped. When --timeout expires the paths found so far
are still written, and the command exits with an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			var (
				reg        *prometheus.Registry
				registerer prometheus.Registerer
			)
			if cfg.Metrics {
				reg = prometheus.NewRegistry()
				registerer = reg
			}
			l, err := newLister(cfg, configFS(cfg), log, registerer)
			if err != nil {
				return err
			}

			err = runList(cmd.Context(), l, root, output, cmd.OutOrStdout(), log)
			if reg != nil {
				if merr := printMetrics(cmd.ErrOrStderr(), reg); merr != nil {
					log.Warnf("failed to gather metrics: %v", merr)
				}
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the listing to this file instead of stdout")

	return cmd
}

func runList(ctx context.Context, l *listing.Lister, root, output string, stdout io.Writer, log *logger.ConsoleLogger) error {
	res, err := l.List(ctx, root)
	if res == nil {
		return err
	}
	if err != nil && !errors.Is(err, listing.ErrIncomplete) {
		return err
	}
	if err != nil {
		log.Warnf("listing of %s incomplete: %v", root, err)
	}

	if output != "" {
		if werr := report.WriteFile(output, res.Paths); werr != nil {
			return werr
		}
		log.Infof("wrote %d paths to %s", len(res.Paths), output)
	} else if werr := report.Write(stdout, res.Paths); werr != nil {
		return werr
	}

	log.Debugf("%d paths, %d directories read, %d errors, %d workers, %s",
		len(res.Paths), res.Stats.Tasks, res.Stats.Errors, res.Stats.Workers, res.Stats.Elapsed)
	return err
}

// printMetrics writes every counter in reg as "name{labels} value".
func printMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			sort.Strings(labels)
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
		}
	}
	return nil
}
