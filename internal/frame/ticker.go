package frame

import (
	"log/slog"
	"sync"
	"time"
)

// Ticker calls the tick function at a fixed interval while started.
type Ticker struct {
	interval time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewTicker creates a ticker firing every interval.
func NewTicker(interval time.Duration, logger *slog.Logger) *Ticker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Ticker{interval: interval, logger: logger}
}

// Start begins ticking on a new goroutine. Starting a running ticker does nothing.
func (t *Ticker) Start(tick func(dt time.Duration)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop != nil {
		return
	}
	t.stop = make(chan struct{})
	go t.run(tick, t.stop)
	t.logger.Debug("frame ticker started", "interval", t.interval)
}

func (t *Ticker) run(tick func(dt time.Duration), stop <-chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			tick(dt)
		case <-stop:
			return
		}
	}
}

// Stop signals the goroutine to exit without waiting for it.
// A tick already in flight may still complete.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stop == nil {
		return
	}
	close(t.stop)
	t.stop = nil
	t.logger.Debug("frame ticker stopped")
}

// Running reports whether the ticker is started.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
