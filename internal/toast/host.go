package toast

import (
	"errors"
	"slices"
	"sync"
	"time"
)

var (
	// ErrNoScreen is returned when the screen provider reports no screens.
	ErrNoScreen = errors.New("no screens available")
	// ErrUnknownPopup is returned for ids that are not registered.
	ErrUnknownPopup = errors.New("unknown popup")
	// ErrImageLoad is wrapped by surface factories that could not load the
	// popup image. The popup is still shown, without the image.
	ErrImageLoad = errors.New("failed to load image")
	// ErrShutdown is returned by Show after Shutdown.
	ErrShutdown = errors.New("registry is shut down")
)

// Surface is the on-screen window of one popup.
// Methods are called with the registry lock held and must not block or
// call back into the registry synchronously.
type Surface interface {
	Move(x, y int)
	Resize(width, height int)
	SetVisible(visible bool)
	Repaint(f Frame)
	Bounds() Rect
	Release()
}

// SurfaceFactory creates surfaces for new popups. Popup.ID, Popup.Key and
// Popup.Content are safe to call from NewSurface.
type SurfaceFactory interface {
	NewSurface(p *Popup) (Surface, error)
}

// Driver calls tick once per rendered frame while started.
// Start and Stop are called with the registry lock held and must return
// without waiting for an in-flight tick.
type Driver interface {
	Start(tick func(dt time.Duration))
	Stop()
}

// Screen is one monitor.
type Screen struct {
	ID     string
	Bounds Rect
}

// Screens reports the monitors popups can be placed on.
type Screens interface {
	Screens() []Screen
	// PointerScreen returns the index of the screen under the pointer,
	// or -1 when unknown.
	PointerScreen() int
}

// StaticScreens is a fixed screen list with no pointer tracking.
type StaticScreens []Screen

func (s StaticScreens) Screens() []Screen { return s }

func (s StaticScreens) PointerScreen() int { return -1 }

// ScreenSet is a mutable screen list for hosts without a monitor API,
// such as the terminal and the simulator.
type ScreenSet struct {
	mu      sync.RWMutex
	screens []Screen
	pointer int
}

// NewScreenSet creates a set with the given screens and no pointer screen.
func NewScreenSet(screens ...Screen) *ScreenSet {
	return &ScreenSet{screens: slices.Clone(screens), pointer: -1}
}

// Screens implements Screens.
func (s *ScreenSet) Screens() []Screen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.screens)
}

// PointerScreen implements Screens.
func (s *ScreenSet) PointerScreen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pointer
}

// SetPointer records the index of the screen under the pointer; -1 clears it.
func (s *ScreenSet) SetPointer(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = i
}

// Set updates the bounds of screen id, appending it when unknown.
func (s *ScreenSet) Set(id string, bounds Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.screens {
		if s.screens[i].ID == id {
			s.screens[i].Bounds = bounds
			return
		}
	}
	s.screens = append(s.screens, Screen{ID: id, Bounds: bounds})
}

// HostError is returned by hosts when a window system operation fails.
type HostError struct {
	Message string
	Cause   error
}

func (e *HostError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *HostError) Unwrap() error {
	return e.Cause
}
