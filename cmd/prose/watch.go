package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/prose/pkg/cli"
	"mercator-hq/prose/pkg/config"
	"mercator-hq/prose/pkg/history"
	"mercator-hq/prose/pkg/prose"
	"mercator-hq/prose/pkg/telemetry/metrics"
	"mercator-hq/prose/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <file|dir> [...]",
	Short: "Recheck source files as they change",
	Long: `Watch Prose source files and recheck them whenever they change on
disk. Every watched file is checked once at startup, then again after
each save, with rapid saves debounced into a single check.

When history is enabled in the configuration, each check is recorded in
the run history store. When metrics are enabled, a Prometheus endpoint
serves check counters and durations.

Examples:
  # Watch a directory
  prose watch workflows/

  # Watch specific files
  prose watch a.prose b.prose`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := slog.Default().With("component", "watch")

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.NewStore(&history.Config{Path: cfg.History.Path})
		if err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer func() { _ = store.Close() }()

		if cfg.History.RetentionDays > 0 {
			cutoff := time.Now().UTC().AddDate(0, 0, -cfg.History.RetentionDays)
			if deleted, err := store.Prune(context.Background(), cutoff); err != nil {
				logger.Warn("history prune failed", "error", err)
			} else if deleted > 0 {
				logger.Info("pruned old run records", "deleted", deleted)
			}
		}
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(&cfg.Metrics, nil)
		go serveMetrics(cfg, collector, logger)
	}

	opts := checkOptions(cfg)
	check := func(path string) {
		start := time.Now()
		result, err := prose.CheckFile(path, opts...)
		if err != nil {
			logger.Error("check failed", "file", path, "error", err)
			return
		}
		elapsed := time.Since(start)

		source, _ := os.ReadFile(path)
		report := cli.NewReport(path, result)
		if err := report.WriteText(os.Stdout, string(source)); err != nil {
			logger.Error("report write failed", "file", path, "error", err)
		}

		if collector != nil {
			collector.ObserveCheck(result, elapsed)
		}
		if store != nil {
			run := history.NewRun(path)
			run.SourceHash = history.HashSource(string(source))
			run.Valid = result.Valid
			run.ErrorCount = len(result.Errors)
			run.WarningCount = len(result.Warnings)
			run.Duration = elapsed
			if err := store.Record(context.Background(), run); err != nil {
				logger.Warn("history record failed", "file", path, "error", err)
			}
		}
	}

	watcher, err := watch.New(&watch.Config{
		Paths:          args,
		Extensions:     []string{".prose"},
		Debounce:       cfg.Watch.Debounce,
		RescanSchedule: cfg.Watch.RescanSchedule,
		SkipHidden:     true,
	}, check, logger)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	if collector != nil {
		collector.SetFilesWatched(len(watcher.Files()))
	}

	ctx := cli.SetupSignalHandler()
	if err := watcher.Run(ctx); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}

func serveMetrics(cfg *config.Config, collector *metrics.Collector, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	logger.Info("metrics endpoint listening", "address", cfg.Metrics.ListenAddress)
	server := &http.Server{
		Addr:              cfg.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics endpoint failed", "error", err)
	}
}
