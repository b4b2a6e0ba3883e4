package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// frameMsg is delivered once per animation frame while popups are live.
type frameMsg time.Time

// teaDriver ticks the registry from bubbletea frame messages. The registry
// calls Start and Stop from inside Update, so no locking is needed.
type teaDriver struct {
	interval  time.Duration
	tick      func(dt time.Duration)
	running   bool
	scheduled bool
	last      time.Time
}

func newTeaDriver(interval time.Duration) *teaDriver {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &teaDriver{interval: interval}
}

// Start implements toast.Driver.
func (d *teaDriver) Start(tick func(dt time.Duration)) {
	d.tick = tick
	d.running = true
}

// Stop implements toast.Driver. A frame already scheduled is dropped.
func (d *teaDriver) Stop() {
	d.running = false
}

// schedule returns the command for the next frame if one is needed.
func (d *teaDriver) schedule() tea.Cmd {
	if !d.running || d.scheduled {
		return nil
	}
	d.scheduled = true
	if d.last.IsZero() {
		d.last = time.Now()
	}
	return tea.Tick(d.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// frame advances the registry to t and schedules the next frame.
func (d *teaDriver) frame(t time.Time) tea.Cmd {
	d.scheduled = false
	if !d.running {
		d.last = time.Time{}
		return nil
	}
	dt := t.Sub(d.last)
	if dt < 0 {
		dt = 0
	}
	d.last = t
	d.tick(dt)
	if !d.running {
		d.last = time.Time{}
	}
	return d.schedule()
}
