package theme

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Watcher polls theme files and reports the ones that changed on disk.
type Watcher struct {
	mu       sync.Mutex
	logger   *slog.Logger
	themes   map[string]*Theme // By path
	interval time.Duration
	onChange func(*Theme)

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewWatcher creates a watcher polling once a second.
func NewWatcher(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		logger:   logger,
		themes:   make(map[string]*Theme),
		interval: time.Second,
	}
}

// SetPollInterval sets how often files are checked. Call before Start.
func (w *Watcher) SetPollInterval(interval time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if interval > 0 {
		w.interval = interval
	}
}

// SetChangeCallback sets the callback invoked with each reloaded theme.
// It runs on the watcher goroutine.
func (w *Watcher) SetChangeCallback(cb func(*Theme)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = cb
}

// Watch adds themes to the watch set. Built-in themes are ignored.
func (w *Watcher) Watch(themes ...*Theme) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range themes {
		if t != nil && !t.IsBuiltin() {
			w.themes[t.Path] = t
		}
	}
}

// Reset empties the watch set.
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.themes)
}

// Start begins polling until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopCh != nil {
		return
	}
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	go w.loop(ctx, w.interval, w.stopCh, w.doneCh)
	w.logger.Debug("theme watcher started", "interval", w.interval)
}

// Stop stops polling and waits for the poll goroutine to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	stop, done := w.stopCh, w.doneCh
	w.stopCh, w.doneCh = nil, nil
	w.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	w.logger.Debug("theme watcher stopped")
}

// Running reports whether the watcher is polling.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopCh != nil
}

func (w *Watcher) loop(ctx context.Context, interval time.Duration, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll reloads every watched theme whose file changed.
func (w *Watcher) poll() {
	w.mu.Lock()
	var changed []*Theme
	for path, t := range w.themes {
		ok, err := t.Reload()
		if err != nil {
			w.logger.Warn("failed to reload theme", "path", path, "error", err)
			continue
		}
		if ok {
			copied := *t
			changed = append(changed, &copied)
		}
	}
	cb := w.onChange
	w.mu.Unlock()

	for _, t := range changed {
		w.logger.Info("theme file changed, reloading", "theme", t.Name, "path", t.Path)
		if cb != nil {
			cb(t)
		}
	}
}
