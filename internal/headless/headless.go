// Package headless provides popup surfaces that render nowhere. They record
// their geometry and last frame so the simulator and tests can inspect what
// a real host would have drawn.
package headless

import (
	"os"
	"sync"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Host creates headless surfaces. Image paths are checked for existence.
type Host struct {
	mu       sync.Mutex
	surfaces map[string]*Surface
	released int
}

// NewHost creates an empty host.
func NewHost() *Host {
	return &Host{surfaces: make(map[string]*Surface)}
}

// NewSurface implements toast.SurfaceFactory. A missing image returns the
// surface together with toast.ErrImageLoad.
func (h *Host) NewSurface(p *toast.Popup) (toast.Surface, error) {
	s := &Surface{id: p.ID(), host: h}

	h.mu.Lock()
	h.surfaces[s.id] = s
	h.mu.Unlock()

	if img := p.Content().Image; img != "" {
		if _, err := os.Stat(img); err != nil {
			return s, &toast.HostError{Message: "image " + img, Cause: toast.ErrImageLoad}
		}
	}
	return s, nil
}

// Surface returns the live surface of popup id.
func (h *Host) Surface(id string) (*Surface, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.surfaces[id]
	return s, ok
}

// Live returns the number of surfaces not yet released.
func (h *Host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}

// Released returns the number of surfaces released so far.
func (h *Host) Released() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *Host) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.surfaces[id]; ok {
		delete(h.surfaces, id)
		h.released++
	}
}

// Surface is a headless popup window.
type Surface struct {
	mu      sync.Mutex
	id      string
	host    *Host
	bounds  toast.Rect
	visible bool
	frame   toast.Frame
	paints  int
}

func (s *Surface) Move(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds.X, s.bounds.Y = x, y
}

func (s *Surface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bounds.Width, s.bounds.Height = w, h
}

func (s *Surface) SetVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = v
}

func (s *Surface) Repaint(f toast.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.paints++
}

func (s *Surface) Bounds() toast.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bounds
}

func (s *Surface) Release() {
	s.host.release(s.id)
}

// Visible reports whether the surface is shown.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Frame returns the last painted frame.
func (s *Surface) Frame() toast.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Paints returns how many times the surface was repainted.
func (s *Surface) Paints() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paints
}
