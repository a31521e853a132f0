package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Config contains configuration for the SQLite-backed run store.
type Config struct {
	// Path is the database file path. Parent directories are created.
	Path string

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:        "data/prose-history.db",
		BusyTimeout: 5 * time.Second,
	}
}

// Store records check runs in a SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (creating if necessary) the run database at the
// configured path and ensures the schema exists.
func NewStore(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	logger := slog.Default().With("component", "history.store")

	if dir := filepath.Dir(config.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory %q: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("opening history database %q: %w", config.Path, err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initialize(config); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized", "path", config.Path)
	return s, nil
}

func (s *Store) initialize(config *Config) error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enabling WAL mode: %w", err)
	}

	busyTimeout := config.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Record stores one run.
func (s *Store) Record(ctx context.Context, run *Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, file, source_hash, checked_at, valid, error_count, warning_count, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.File, run.SourceHash, run.CheckedAt, run.Valid,
		run.ErrorCount, run.WarningCount, run.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("recording run %s: %w", run.ID, err)
	}

	s.logger.Debug("run recorded", "id", run.ID, "file", run.File, "valid", run.Valid)
	return nil
}

// Recent returns the most recent runs across all files, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, source_hash, checked_at, valid, error_count, warning_count, duration_ms
		 FROM runs ORDER BY checked_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// ForFile returns the most recent runs for one file, newest first.
func (s *Store) ForFile(ctx context.Context, file string, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file, source_hash, checked_at, valid, error_count, warning_count, duration_ms
		 FROM runs WHERE file = ? ORDER BY checked_at DESC LIMIT ?`, file, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs for %q: %w", file, err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// Prune deletes runs older than the cutoff and reports how many were
// removed. The retention scheduler calls this on its cron cadence.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE checked_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning runs: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned runs: %w", err)
	}
	if removed > 0 {
		s.logger.Info("pruned old runs", "removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var durationMS int64
		if err := rows.Scan(&run.ID, &run.File, &run.SourceHash, &run.CheckedAt, &run.Valid,
			&run.ErrorCount, &run.WarningCount, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run rows: %w", err)
	}
	return runs, nil
}
