package content

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

type invalidator interface {
	Invalidate()
}

// Watcher invalidates a cache whenever a JSON file in the content directory changes. Bursts of
// events (editors tend to write several times per save) collapse into a single invalidation.
type Watcher struct {
	logger   *slog.Logger
	dir      string
	cache    invalidator
	debounce time.Duration
	watcher  *fsnotify.Watcher

	lock    sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewWatcher(logger *slog.Logger, dir string, cache invalidator, debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		logger:   logger,
		dir:      dir,
		cache:    cache,
		debounce: debounce,
		watcher:  w,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

func (w *Watcher) Start(ctx context.Context) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.running {
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.running = true
	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and releases the underlying watcher. It is safe to call more than
// once, or without Start.
func (w *Watcher) Stop() error {
	w.lock.Lock()
	wasRunning := w.running
	w.running = false
	w.lock.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			w.logger.Debug("content changed", slog.String("file", event.Name), slog.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("content watcher error", slog.String("err", err.Error()))
		case <-timer.C:
			w.logger.Info("reloading content", slog.String("dir", w.dir))
			w.cache.Invalidate()
		}
	}
}
