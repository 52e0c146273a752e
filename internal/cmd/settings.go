package cmd

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dendrascience/dirlist/internal/config"
	"github.com/dendrascience/dirlist/internal/logger"
	"github.com/dendrascience/dirlist/listing"
)

// listerFlags are the traversal flags shared by list and count.
type listerFlags struct {
	configPath    string
	workers       int
	queueCapacity int
	timeout       time.Duration
	logLevel      string
	metrics       bool
}

func (f *listerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "Path to config file (default "+config.DefaultFileName+")")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "Number of listing workers (default: number of CPUs)")
	cmd.Flags().IntVarP(&f.queueCapacity, "queue-capacity", "q", 0, "Maximum queued directories, 0 for unbounded")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "Give up after this long and report partial results")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().BoolVar(&f.metrics, "metrics", false, "Print listing counters when done")
}

// resolve loads the config file and applies the flags the user set.
func (f *listerFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = config.DefaultFileName
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	var (
		workers, queueCapacity *int
		timeout                *time.Duration
		logLevel               *string
		metrics                *bool
	)
	flags := cmd.Flags()
	if flags.Changed("workers") {
		workers = &f.workers
	}
	if flags.Changed("queue-capacity") {
		queueCapacity = &f.queueCapacity
	}
	if flags.Changed("timeout") {
		timeout = &f.timeout
	}
	if flags.Changed("log-level") {
		logLevel = &f.logLevel
	}
	if flags.Changed("metrics") {
		metrics = &f.metrics
	}
	cfg.MergeWithFlags(workers, queueCapacity, timeout, logLevel, metrics)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configFS returns the host filesystem, rate limited when the config asks.
func configFS(cfg *config.Config) listing.FileSystem {
	return listing.Throttle(listing.OSFS{}, cfg.ListRate, cfg.ListBurst)
}

// newLister builds a Lister over fsys that logs through log and, when reg is
// not nil, counts events into reg.
func newLister(cfg *config.Config, fsys listing.FileSystem, log *logger.ConsoleLogger, reg prometheus.Registerer) (*listing.Lister, error) {
	recs := []listing.Recorder{logger.NewEventLogger(log)}
	if reg != nil {
		recs = append(recs, listing.NewMetricsRecorder(reg))
	}
	return listing.New(listing.Options{
		Workers:       cfg.Workers,
		QueueCapacity: cfg.QueueCapacity,
		Timeout:       cfg.Timeout,
		FS:            fsys,
		Recorder:      listing.MultiRecorder(recs...),
	})
}
