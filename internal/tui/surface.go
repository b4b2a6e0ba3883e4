package tui

import (
	"sync"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Terminal cells are mapped onto a virtual pixel grid so popups keep the
// same geometry as on a real display.
const (
	cellWidth  = 10
	cellHeight = 20
)

// screenID names the single terminal screen.
const screenID = "tui"

// cellHost creates popup surfaces drawn into terminal cells.
type cellHost struct {
	mu       sync.Mutex
	surfaces map[string]*cellSurface
}

func newCellHost() *cellHost {
	return &cellHost{surfaces: make(map[string]*cellSurface)}
}

// NewSurface implements toast.SurfaceFactory. Images are not drawn in the
// terminal, so there is nothing to fail on.
func (h *cellHost) NewSurface(p *toast.Popup) (toast.Surface, error) {
	s := &cellSurface{host: h, id: p.ID()}
	h.mu.Lock()
	h.surfaces[s.id] = s
	h.mu.Unlock()
	return s, nil
}

// visible returns the shown surfaces with their last frames.
func (h *cellHost) visible() []toast.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	frames := make([]toast.Frame, 0, len(h.surfaces))
	for _, s := range h.surfaces {
		if s.visible && s.painted {
			f := s.frame
			f.X, f.Y = s.bounds.X, s.bounds.Y
			frames = append(frames, f)
		}
	}
	return frames
}

func (h *cellHost) release(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.surfaces, id)
}

// cellSurface is a popup drawn as a block of terminal cells. Its fields
// are guarded by the host mutex.
type cellSurface struct {
	host    *cellHost
	id      string
	bounds  toast.Rect
	visible bool
	painted bool
	frame   toast.Frame
}

func (s *cellSurface) Move(x, y int) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.bounds.X, s.bounds.Y = x, y
}

func (s *cellSurface) Resize(w, h int) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.bounds.Width, s.bounds.Height = w, h
}

func (s *cellSurface) SetVisible(v bool) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.visible = v
}

func (s *cellSurface) Repaint(f toast.Frame) {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	s.frame = f
	s.painted = true
}

func (s *cellSurface) Bounds() toast.Rect {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	return s.bounds
}

func (s *cellSurface) Release() {
	s.host.release(s.id)
}

// screenBounds converts a terminal size in cells to virtual pixels.
func screenBounds(cols, rows int) toast.Rect {
	return toast.Rect{Width: max(0, cols) * cellWidth, Height: max(0, rows) * cellHeight}
}

// cellToPixel returns the virtual pixel at the centre of a terminal cell.
func cellToPixel(col, row int) (int, int) {
	return col*cellWidth + cellWidth/2, row*cellHeight + cellHeight/2
}
