package display

import (
	"log/slog"
	"time"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
)

// Driver ticks a registry from a GLib timeout on the main loop.
type Driver struct {
	interval time.Duration
	logger   *slog.Logger

	tick    func(dt time.Duration)
	handle  coreglib.SourceHandle
	active  bool // Timeout source installed
	inTick  bool
	stopped bool // Stop was requested during a tick
	last    time.Time
}

// NewDriver creates a driver ticking every interval.
func NewDriver(interval time.Duration, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Driver{interval: interval, logger: logger}
}

// SetInterval changes the tick interval. A running timeout is reinstalled.
func (d *Driver) SetInterval(interval time.Duration) {
	if interval <= 0 || interval == d.interval {
		return
	}
	d.interval = interval
	if d.active && !d.inTick {
		coreglib.SourceRemove(d.handle)
		d.install()
	}
}

// Start implements toast.Driver.
func (d *Driver) Start(tick func(dt time.Duration)) {
	d.tick = tick
	d.stopped = false
	if d.active {
		return
	}
	d.install()
	d.logger.Debug("frame driver started", "interval", d.interval)
}

func (d *Driver) install() {
	d.active = true
	d.last = time.Now()
	d.handle = coreglib.TimeoutAdd(uint(d.interval.Milliseconds()), d.frame)
}

// Stop implements toast.Driver. Stopping from inside a tick takes effect
// when the tick returns.
func (d *Driver) Stop() {
	if !d.active {
		return
	}
	if d.inTick {
		d.stopped = true
		return
	}
	coreglib.SourceRemove(d.handle)
	d.active = false
	d.logger.Debug("frame driver stopped")
}

// Running reports whether the timeout is installed.
func (d *Driver) Running() bool {
	return d.active && !d.stopped
}

func (d *Driver) frame() bool {
	now := time.Now()
	dt := now.Sub(d.last)
	d.last = now

	d.inTick = true
	d.tick(dt)
	d.inTick = false

	if d.stopped {
		d.stopped = false
		d.active = false
		d.logger.Debug("frame driver stopped")
		return false
	}
	return true
}
