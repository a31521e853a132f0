package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// CheckFunc is called with the path of a source file that needs to be
// rechecked, either because it changed on disk or because a scheduled
// rescan came due.
type CheckFunc func(path string)

// Config controls what the watcher looks at and how eagerly it reacts.
type Config struct {
	// Paths is the list of files or directories to watch.
	Paths []string

	// Extensions is the list of file extensions to react to
	// (default: ".prose").
	Extensions []string

	// Debounce is the quiet period after a file event before the
	// check fires. Rapid saves of the same file coalesce into one
	// check (default: 300ms).
	Debounce time.Duration

	// RescanSchedule is an optional cron expression for periodic
	// full rescans of all watched files. Empty disables rescans.
	RescanSchedule string

	// SkipHidden controls whether dotfiles are ignored.
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Extensions: []string{".prose"},
		Debounce:   300 * time.Millisecond,
		SkipHidden: true,
	}
}

// Watcher watches source files and invokes a check callback when they
// change. Changes to different files are debounced independently so a
// busy file cannot starve checks of its neighbors.
type Watcher struct {
	watcher  *fsnotify.Watcher
	cron     *cron.Cron
	logger   *slog.Logger
	config   *Config
	check    CheckFunc
	debounce *debouncer

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher. The check callback must not be nil.
func New(config *Config, check CheckFunc, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if len(config.Extensions) == 0 {
		config.Extensions = []string{".prose"}
	}
	if config.Debounce <= 0 {
		config.Debounce = 300 * time.Millisecond
	}
	if check == nil {
		return nil, fmt.Errorf("check callback is required")
	}
	if logger == nil {
		logger = slog.Default().With("component", "watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		watcher:  fsw,
		cron:     cron.New(),
		logger:   logger,
		config:   config,
		check:    check,
		debounce: newDebouncer(config.Debounce),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Run checks every watched file once, then blocks processing file
// events until the context is cancelled or Stop is called.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	for _, path := range w.config.Paths {
		if err := w.addPath(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
	}

	if err := w.startRescans(ctx); err != nil {
		return err
	}
	defer w.stopRescans()

	w.logger.Info("watcher started",
		"paths", w.config.Paths,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	// Initial pass so files broken before startup are reported too.
	w.rescan()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcess(event) {
				continue
			}

			w.logger.Debug("file event",
				"path", event.Name,
				"op", event.Op.String(),
			)

			path := event.Name
			w.debounce.trigger(path, func() {
				w.check(path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("watch error", "error", err)
			// Keep watching; a single bad event is not fatal.
		}
	}
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// Files returns the sorted list of source files currently covered by
// the watched paths.
func (w *Watcher) Files() []string {
	var files []string
	for _, path := range w.config.Paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			if w.matchesExtension(filepath.Ext(path)) {
				files = append(files, path)
			}
			continue
		}
		_ = filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if w.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
				if fi.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !fi.IsDir() && w.matchesExtension(filepath.Ext(p)) {
				files = append(files, p)
			}
			return nil
		})
	}
	sort.Strings(files)
	return files
}

// startRescans schedules periodic full rescans if configured.
func (w *Watcher) startRescans(ctx context.Context) error {
	if w.config.RescanSchedule == "" {
		return nil
	}

	if _, err := cron.ParseStandard(w.config.RescanSchedule); err != nil {
		return fmt.Errorf("invalid rescan schedule %q: %w", w.config.RescanSchedule, err)
	}

	_, err := w.cron.AddFunc(w.config.RescanSchedule, func() {
		select {
		case <-ctx.Done():
		default:
			w.logger.Info("scheduled rescan")
			w.rescan()
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule rescan: %w", err)
	}

	w.cron.Start()
	w.logger.Info("rescan schedule active", "schedule", w.config.RescanSchedule)
	return nil
}

func (w *Watcher) stopRescans() {
	if w.cron != nil {
		stopCtx := w.cron.Stop()
		<-stopCtx.Done()
	}
}

// rescan checks every watched file immediately, bypassing debounce.
func (w *Watcher) rescan() {
	for _, path := range w.Files() {
		w.check(path)
	}
}

func (w *Watcher) addPath(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.watcher.Add(path)
	}

	return filepath.Walk(path, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if w.config.SkipHidden && strings.HasPrefix(filepath.Base(p), ".") && p != path {
			if fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.IsDir() {
			if err := w.watcher.Add(p); err != nil {
				return fmt.Errorf("failed to watch directory %q: %w", p, err)
			}
			w.logger.Debug("watching directory", "path", p)
		}
		return nil
	})
}

// shouldProcess filters out events that cannot affect check results.
func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	if !w.matchesExtension(filepath.Ext(event.Name)) {
		return false
	}
	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return true
}

func (w *Watcher) matchesExtension(ext string) bool {
	ext = strings.ToLower(ext)
	for _, want := range w.config.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
