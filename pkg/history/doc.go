// Package history records check runs in a local SQLite database.
//
// Every prose check invocation can append a Run (file, timestamp, verdict,
// diagnostic counts, duration) so teams can see how a workflow file's
// health evolved. The store is append-only apart from retention pruning,
// which the watch-mode scheduler triggers on a cron cadence.
//
// History never feeds back into checking: a failed or disabled store
// changes nothing about diagnostics or exit codes.
package history
