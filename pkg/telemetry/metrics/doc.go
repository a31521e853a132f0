// Package metrics exposes Prometheus instrumentation for watch mode:
// check counts and durations, diagnostic counts by severity and stage,
// and the number of files under watch.
package metrics
