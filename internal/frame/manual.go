package frame

import (
	"sync"
	"time"
)

// Manual is a driver advanced explicitly with Step.
type Manual struct {
	mu      sync.Mutex
	tick    func(dt time.Duration)
	starts  int
	stops   int
	elapsed time.Duration
}

// NewManual creates a stopped manual driver.
func NewManual() *Manual {
	return &Manual{}
}

// Start records the tick function. Steps only tick while started.
func (m *Manual) Start(tick func(dt time.Duration)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick == nil {
		m.starts++
	}
	m.tick = tick
}

// Stop detaches the tick function.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tick != nil {
		m.stops++
	}
	m.tick = nil
}

// Step advances one frame of dt. It reports whether the driver was running.
func (m *Manual) Step(dt time.Duration) bool {
	m.mu.Lock()
	tick := m.tick
	m.elapsed += dt
	m.mu.Unlock()

	if tick == nil {
		return false
	}
	tick(dt)
	return true
}

// Advance steps frames of dt until total has elapsed. The last frame is
// shortened so exactly total is consumed.
func (m *Manual) Advance(total, dt time.Duration) {
	if dt <= 0 {
		m.Step(total)
		return
	}
	for total > 0 {
		step := min(dt, total)
		m.Step(step)
		total -= step
	}
}

// Running reports whether the driver is started.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick != nil
}

// Starts returns how many times the driver went from stopped to started.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}

// Stops returns how many times the driver went from started to stopped.
func (m *Manual) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Elapsed returns the total time stepped, running or not.
func (m *Manual) Elapsed() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.elapsed
}
