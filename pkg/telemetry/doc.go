// Package telemetry groups the observability subsystems of the Prose
// toolchain.
//
// # Components
//
//   - logging: structured logging via log/slog
//   - metrics: Prometheus metrics for watch mode
//
// # Usage
//
//	logger, err := logging.New(&cfg.Logging, os.Stderr)
//	if err != nil {
//		return err
//	}
//	slog.SetDefault(logger)
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	http.Handle("/metrics", collector.Handler())
package telemetry
