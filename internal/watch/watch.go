// Package watch re-runs a callback when a model file changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor emits on save.
const DefaultDebounce = 300 * time.Millisecond

// Config holds configuration for a Watcher.
type Config struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watcher watches a single file. The parent directory is watched so the
// file survives being replaced by rename, which is how Power BI Desktop saves.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a Watcher.
func New(cfg Config) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(cfg.Path),
		debounce: cfg.Debounce,
		logger:   cfg.Logger,
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	return w
}

// Run calls onChange after every debounced write or re-creation of the file
// and blocks until ctx is cancelled. Calls to onChange never overlap.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Debug("watching file", "path", w.path)

	var (
		mu            sync.Mutex
		debounceTimer *time.Timer
		wg            sync.WaitGroup
	)
	fire := func() {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onChange()
	}
	defer func() {
		if debounceTimer != nil && debounceTimer.Stop() {
			wg.Done()
		}
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce
			if debounceTimer != nil && debounceTimer.Stop() {
				wg.Done()
			}
			w.logger.Debug("file changed", "path", event.Name, "op", event.Op.String())
			wg.Add(1)
			debounceTimer = time.AfterFunc(w.debounce, fire)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}
