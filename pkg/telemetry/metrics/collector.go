package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/prose/pkg/config"
	"mercator-hq/prose/pkg/prose"
)

// Collector registers and records the Prometheus metrics watch mode
// exposes: check counts, diagnostic counts by severity and stage, check
// durations, and the watched-file gauge.
type Collector struct {
	registry *prometheus.Registry

	checksTotal      *prometheus.CounterVec
	diagnosticsTotal *prometheus.CounterVec
	checkDuration    prometheus.Histogram
	filesWatched     prometheus.Gauge
}

// NewCollector creates a collector with the given configuration and
// registry. If registry is nil a fresh one is used, keeping toolchain
// metrics separate from anything else in the process.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "prose"
	}

	c := &Collector{
		registry: registry,
		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checks_total",
				Help:      "Total number of file checks performed",
			},
			[]string{"result"},
		),
		diagnosticsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Total diagnostics reported, by severity and pipeline stage",
			},
			[]string{"severity", "stage"},
		),
		checkDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "check_duration_seconds",
				Help:      "Duration of full front-end checks in seconds",
				// Checks are fast; sub-millisecond to low seconds.
				Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
		),
		filesWatched: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "files_watched",
				Help:      "Number of files currently under watch",
			},
		),
	}

	registry.MustRegister(c.checksTotal, c.diagnosticsTotal, c.checkDuration, c.filesWatched)
	return c
}

// ObserveCheck records one completed check.
func (c *Collector) ObserveCheck(result *prose.CheckResult, duration time.Duration) {
	verdict := "valid"
	if !result.Valid {
		verdict = "invalid"
	}
	c.checksTotal.WithLabelValues(verdict).Inc()
	c.checkDuration.Observe(duration.Seconds())

	for _, d := range result.Diagnostics() {
		c.diagnosticsTotal.WithLabelValues(string(d.Severity), string(d.Stage)).Inc()
	}
}

// SetFilesWatched updates the watched-file gauge.
func (c *Collector) SetFilesWatched(n int) {
	c.filesWatched.Set(float64(n))
}

// Registry exposes the underlying registry for testing and composition.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
