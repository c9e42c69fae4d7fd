// Package watcher keeps the workflow store converged with a directory of
// workflow document files. The directory is the host-side canonical copy;
// edits land in the store through the reconciler, and store-side results are
// mirrored back out through the bridge notifier.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/flowbridge/flowbridge/pkg/bridge"
	"github.com/flowbridge/flowbridge/pkg/models"
	"github.com/flowbridge/flowbridge/pkg/reconcile"
	"github.com/flowbridge/flowbridge/pkg/schema"
)

// DefaultDebounce is the settle delay after a file event before the file is
// reconciled. Editors fire several events per save.
const DefaultDebounce = 300 * time.Millisecond

// Watcher reconciles workflow document files from one directory.
type Watcher struct {
	path           string
	reconciler     *reconcile.Reconciler
	notifier       *bridge.Notifier
	logger         *slog.Logger
	debounce       time.Duration
	resyncSchedule string

	fsWatcher *fsnotify.Watcher
	scheduler *cron.Cron

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over path. notifier may be nil when no host bridge is
// attached.
func New(
	path string,
	reconciler *reconcile.Reconciler,
	notifier *bridge.Notifier,
	logger *slog.Logger,
	debounce time.Duration,
	resyncSchedule string,
) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		path:           path,
		reconciler:     reconciler,
		notifier:       notifier,
		logger:         logger,
		debounce:       debounce,
		resyncSchedule: resyncSchedule,
		timers:         make(map[string]*time.Timer),
	}
}

// Start begins watching for file events and schedules the periodic full
// resync. It returns after the watch is established; event handling continues
// until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(w.path); err != nil {
		_ = fsWatcher.Close()

		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.fsWatcher = fsWatcher

	if w.resyncSchedule != "" {
		w.scheduler = cron.New()

		_, err := w.scheduler.AddFunc(w.resyncSchedule, func() {
			if _, err := w.SyncAll(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic resync failed", "error", err)
			}
		})
		if err != nil {
			_ = fsWatcher.Close()

			return fmt.Errorf("invalid resync schedule %q: %w", w.resyncSchedule, err)
		}

		w.scheduler.Start()
	}

	go w.loop(ctx)

	w.logger.InfoContext(ctx, "Watching workflow directory", "path", w.path, "resync", w.resyncSchedule)

	return nil
}

// Stop halts file watching and the resync scheduler.
func (w *Watcher) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}

	if w.fsWatcher != nil {
		_ = w.fsWatcher.Close()
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}

			if !strings.HasSuffix(event.Name, ".json") {
				continue
			}

			w.scheduleSync(ctx, event.Name)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}

			w.logger.ErrorContext(ctx, "File watcher error", "error", err)
		}
	}
}

// scheduleSync debounces per file path so editor save bursts collapse into
// one reconcile.
func (w *Watcher) scheduleSync(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}

	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		if _, err := w.SyncFile(ctx, path); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync workflow file", "file", path, "error", err)
		}
	})
}

// SyncFile validates and reconciles a single workflow document file.
func (w *Watcher) SyncFile(ctx context.Context, path string) (*models.SyncResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file %s: %w", path, err)
	}

	if err := schema.ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("invalid workflow file %s: %w", path, err)
	}

	var doc models.Workflow
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse workflow file %s: %w", path, err)
	}

	result, err := w.reconciler.Sync(ctx, &doc)
	if err != nil {
		return nil, err
	}

	w.logger.InfoContext(ctx, "Workflow file synced",
		"file", filepath.Base(path),
		"workflow_id", result.Workflow.ID,
		"action", result.Action,
	)

	if w.notifier != nil && result.Action != models.ActionUnchanged {
		w.notifier.Notify(ctx, result.Workflow)
	}

	return result, nil
}

// SyncAll reconciles every document file in the watched directory. Individual
// file failures are counted, logged and skipped; the pass continues.
func (w *Watcher) SyncAll(ctx context.Context) (*models.SyncStats, error) {
	stats := &models.SyncStats{StartTime: time.Now().UTC()}

	files, err := fs.Glob(os.DirFS(w.path), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow files in %s: %w", w.path, err)
	}

	for _, file := range files {
		result, err := w.SyncFile(ctx, filepath.Join(w.path, file))
		if err != nil {
			w.logger.ErrorContext(ctx, "Skipping workflow file", "file", file, "error", err)
		}

		stats.Record(result, err)
	}

	stats.EndTime = time.Now().UTC()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	return stats, nil
}
