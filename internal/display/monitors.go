package display

import (
	"log/slog"
	"strconv"
	"sync"
	"unsafe"

	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Monitors reports the GDK monitors of the default display as toast screens.
type Monitors struct {
	mu       sync.RWMutex
	display  *gdk.Display
	screens  []toast.Screen
	monitors map[string]*gdk.Monitor
	pointer  int
	onChange func([]toast.Screen)
	logger   *slog.Logger
}

// NewMonitors reads the monitors of the default display and follows changes.
func NewMonitors(logger *slog.Logger) (*Monitors, error) {
	if logger == nil {
		logger = slog.Default()
	}
	display := gdk.DisplayGetDefault()
	if display == nil {
		return nil, &toast.HostError{Message: "no display available"}
	}

	m := &Monitors{
		display:  display,
		monitors: make(map[string]*gdk.Monitor),
		pointer:  -1,
		logger:   logger,
	}
	m.refresh()

	if list := display.Monitors(); list != nil {
		list.ConnectItemsChanged(func(position, removed, added uint) {
			m.refresh()
			m.mu.RLock()
			cb, screens := m.onChange, m.screens
			m.mu.RUnlock()
			m.logger.Info("monitor configuration changed", "count", len(screens))
			if cb != nil {
				cb(screens)
			}
		})
	}
	return m, nil
}

// SetChangeCallback sets the callback invoked with the new screen list
// after monitors are added, removed or resized.
func (m *Monitors) SetChangeCallback(cb func([]toast.Screen)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = cb
}

// Screens implements toast.Screens.
func (m *Monitors) Screens() []toast.Screen {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.screens
}

// PointerScreen implements toast.Screens. Wayland exposes no global pointer
// position, so this is the screen of the popup last entered by the pointer.
func (m *Monitors) PointerScreen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pointer
}

// pointerEntered records that the pointer is on screen id.
func (m *Monitors) pointerEntered(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.screens {
		if s.ID == id {
			m.pointer = i
			return
		}
	}
}

// monitor returns the GDK monitor backing screen id.
func (m *Monitors) monitor(id string) (*gdk.Monitor, toast.Rect, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mon, ok := m.monitors[id]
	if !ok {
		return nil, toast.Rect{}, false
	}
	for _, s := range m.screens {
		if s.ID == id {
			return mon, s.Bounds, true
		}
	}
	return nil, toast.Rect{}, false
}

func (m *Monitors) refresh() {
	list := m.display.Monitors()
	var screens []toast.Screen
	monitors := make(map[string]*gdk.Monitor)

	if list != nil {
		for i := range list.NItems() {
			mon := wrapMonitor(list.Item(i))
			if mon == nil {
				continue
			}
			id := mon.Connector()
			if id == "" {
				id = strconv.Itoa(int(i))
			}
			g := mon.Geometry()
			screens = append(screens, toast.Screen{
				ID:     id,
				Bounds: toast.Rect{X: g.X(), Y: g.Y(), Width: g.Width(), Height: g.Height()},
			})
			monitors[id] = mon
		}
	}

	m.mu.Lock()
	m.screens = screens
	m.monitors = monitors
	if m.pointer >= len(screens) {
		m.pointer = -1
	}
	m.mu.Unlock()
}

// wrapMonitor wraps a coreglib.Object as a gdk.Monitor.
// gotk4 does not export its own wrapper for list model items.
func wrapMonitor(obj *coreglib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	// gdk.Monitor embeds a *coreglib.Object; build one the way gotk4 does.
	type monitor struct {
		_ [0]func()
		*coreglib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
