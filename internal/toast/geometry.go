package toast

import (
	"fmt"
	"strings"
)

// Corner is the screen anchor a stack of popups grows from.
type Corner int

const (
	// CornerUnset selects the registry's default corner.
	CornerUnset Corner = iota
	TopLeft
	TopRight
	TopCenter
	Center
	BottomLeft
	BottomRight
	BottomCenter
)

var cornerNames = map[Corner]string{
	TopLeft:      "top-left",
	TopRight:     "top-right",
	TopCenter:    "top-center",
	Center:       "center",
	BottomLeft:   "bottom-left",
	BottomRight:  "bottom-right",
	BottomCenter: "bottom-center",
}

// Corners returns every valid corner in display order.
func Corners() []Corner {
	return []Corner{TopLeft, TopRight, TopCenter, Center, BottomLeft, BottomRight, BottomCenter}
}

// String returns the kebab-case corner name.
func (c Corner) String() string {
	if name, ok := cornerNames[c]; ok {
		return name
	}
	if c == CornerUnset {
		return "unset"
	}
	return fmt.Sprintf("corner(%d)", int(c))
}

// ParseCorner parses a kebab-case corner name such as "top-right".
func ParseCorner(s string) (Corner, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range cornerNames {
		if name == s {
			return c, nil
		}
	}
	return CornerUnset, fmt.Errorf("unknown corner %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Corner) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Corner) UnmarshalText(text []byte) error {
	parsed, err := ParseCorner(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// GrowsDown reports whether new popups stack below older ones.
// Bottom corners grow upward; every other corner grows downward.
func (c Corner) GrowsDown() bool {
	switch c {
	case TopLeft, TopRight, TopCenter, Center:
		return true
	case BottomLeft, BottomRight, BottomCenter:
		return false
	default:
		panic(fmt.Sprintf("toast: invalid corner %d", int(c)))
	}
}

// AnchorKey identifies one stack: a corner of one screen.
type AnchorKey struct {
	Screen string
	Corner Corner
}

func (k AnchorKey) String() string {
	return k.Screen + "/" + k.Corner.String()
}

// Rect is an integer rectangle in desktop coordinates.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Point is a position in desktop coordinates.
type Point struct {
	X, Y int
}

// Layout holds the fixed popup geometry.
type Layout struct {
	Width       int // Popup width
	Height      int // Popup height
	Padding     int // Distance between the first popup and the screen edge
	Gap         int // Vertical distance between stacked popups
	CloseRegion int // Side of the close-button square in the top-right corner
}

// DefaultLayout returns the standard 300x87 popup geometry.
func DefaultLayout() Layout {
	return Layout{
		Width:       300,
		Height:      87,
		Padding:     20,
		Gap:         10,
		CloseRegion: 20,
	}
}

// Anchor returns the position of the first popup of a stack at corner c
// of a screen with the given bounds.
func (l Layout) Anchor(c Corner, bounds Rect) Point {
	left := bounds.X + l.Padding
	right := bounds.X + bounds.Width - l.Width - l.Padding
	middle := bounds.X + (bounds.Width-l.Width)/2
	top := bounds.Y + l.Padding
	bottom := bounds.Y + bounds.Height - l.Height - l.Padding

	switch c {
	case TopLeft:
		return Point{left, top}
	case TopRight:
		return Point{right, top}
	case TopCenter:
		return Point{middle, top}
	case Center:
		return Point{middle, bounds.Y + (bounds.Height-l.Height)/2 - l.Gap}
	case BottomLeft:
		return Point{left, bottom}
	case BottomRight:
		return Point{right, bottom}
	case BottomCenter:
		return Point{middle, bottom}
	default:
		panic(fmt.Sprintf("toast: invalid corner %d", int(c)))
	}
}

// Slot returns the position of the popup at stack index i.
func (l Layout) Slot(c Corner, bounds Rect, i int) Point {
	p := l.Anchor(c, bounds)
	step := i * (l.Height + l.Gap)
	if c.GrowsDown() {
		p.Y += step
	} else {
		p.Y -= step
	}
	return p
}

// InCloseRegion reports whether popup-local (x, y) hits the close button.
func (l Layout) InCloseRegion(x, y int) bool {
	return x >= l.Width-l.CloseRegion && x <= l.Width && y >= 0 && y <= l.CloseRegion
}
