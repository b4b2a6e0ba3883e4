package toast

import (
	"crypto/rand"
	"math"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jmylchreest/toasty/internal/anim"
)

// State is the lifecycle state of a popup.
type State int

const (
	StateCreating State = iota
	StateVisible
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateVisible:
		return "visible"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Tween kinds used to resolve completions against popup state.
const (
	tweenMove anim.Kind = iota + 1
	tweenHide
	tweenShake
)

// Popup is one notification window. All mutation goes through the Registry.
type Popup struct {
	id      string
	key     AnchorKey
	content Content
	created time.Time
	reg     *Registry

	hideAfter       time.Duration
	hideCloseButton bool
	keepOnClick     bool
	onClick         func(*Popup)
	onClose         func(*Popup)

	// Guarded by reg.mu.
	state      State
	index      int
	anchor     Point
	x, y       float32
	progress   float32
	closeHover bool
	surface    Surface
	drawn      Point

	move  *anim.Tween
	hide  *anim.Tween
	shake *anim.Tween
}

func newPopup(reg *Registry, key AnchorKey, req Request) (*Popup, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, err
	}

	hideAfter := req.HideAfter
	if hideAfter < 0 {
		hideAfter = 0
	}

	return &Popup{
		id:  id.String(),
		key: key,
		content: Content{
			Title: req.Title,
			Text:  req.Text,
			Image: req.Image,
			Kind:  req.Kind,
			Theme: req.Theme,
		},
		created:         now,
		reg:             reg,
		hideAfter:       hideAfter,
		hideCloseButton: req.HideCloseButton,
		keepOnClick:     req.KeepOnClick,
		onClick:         req.OnClick,
		onClose:         req.OnClose,
		state:           StateCreating,
	}, nil
}

// ID returns the popup's unique id.
func (p *Popup) ID() string { return p.id }

// Key returns the stack the popup belongs to.
func (p *Popup) Key() AnchorKey { return p.key }

// Content returns the popup's visual content.
func (p *Popup) Content() Content { return p.content }

// Created returns when the popup was requested.
func (p *Popup) Created() time.Time { return p.created }

// HideAfter returns the countdown length, zero when the popup never hides.
func (p *Popup) HideAfter() time.Duration { return p.hideAfter }

// HideCloseButton reports whether the close button is disabled.
func (p *Popup) HideCloseButton() bool { return p.hideCloseButton }

// State returns the current lifecycle state.
func (p *Popup) State() State {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	return p.state
}

// Index returns the popup's position in its stack, 0 nearest the anchor.
func (p *Popup) Index() int {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	return p.index
}

// Position returns the live position, rounded to whole pixels.
func (p *Popup) Position() Point {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	return p.position()
}

// Progress returns the countdown progress in pixels, 0 to the popup width.
func (p *Popup) Progress() float32 {
	p.reg.mu.Lock()
	defer p.reg.mu.Unlock()
	return p.progress
}

// Close closes the popup. Closing a popup that is not visible does nothing.
func (p *Popup) Close() {
	_ = p.reg.Close(p.id)
}

func (p *Popup) position() Point {
	return Point{X: int(math.Round(float64(p.x))), Y: int(math.Round(float64(p.y)))}
}

// frame builds the draw instruction. Caller holds reg.mu.
func (p *Popup) frame(l Layout) Frame {
	pos := p.position()
	return Frame{
		ID:              p.id,
		Screen:          p.key.Screen,
		Corner:          p.key.Corner,
		Index:           p.index,
		Title:           p.content.Title,
		Text:            p.content.Summary(),
		Image:           p.content.Image,
		Kind:            p.content.Kind,
		Theme:           p.content.Theme,
		X:               pos.X,
		Y:               pos.Y,
		Width:           l.Width,
		Height:          l.Height,
		Progress:        int(math.Min(float64(p.progress), float64(l.Width))),
		Countdown:       p.hideAfter > 0,
		CloseHover:      p.closeHover,
		HideCloseButton: p.hideCloseButton,
		State:           p.state,
	}
}

// Frame is the draw instruction for one popup at one tick.
type Frame struct {
	ID              string `json:"id" yaml:"id"`
	Screen          string `json:"screen" yaml:"screen"`
	Corner          Corner `json:"corner" yaml:"corner"`
	Index           int    `json:"index" yaml:"index"`
	Title           string `json:"title" yaml:"title"`
	Text            string `json:"text" yaml:"text"`
	Image           string `json:"image,omitempty" yaml:"image,omitempty"`
	Kind            Kind   `json:"kind" yaml:"kind"`
	Theme           string `json:"theme,omitempty" yaml:"theme,omitempty"`
	X               int    `json:"x" yaml:"x"`
	Y               int    `json:"y" yaml:"y"`
	Width           int    `json:"width" yaml:"width"`
	Height          int    `json:"height" yaml:"height"`
	Progress        int    `json:"progress" yaml:"progress"`
	Countdown       bool   `json:"countdown" yaml:"countdown"`
	CloseHover      bool   `json:"close_hover" yaml:"close_hover"`
	HideCloseButton bool   `json:"hide_close_button" yaml:"hide_close_button"`
	State           State  `json:"state" yaml:"state"`
}

// popupAccessor exposes popup position and progress to tweens.
type popupAccessor struct{}

func (popupAccessor) Values(target any, prop anim.Property, dst []float32) int {
	p := target.(*Popup)
	switch prop {
	case anim.PropertyX:
		dst[0] = p.x
	case anim.PropertyY:
		dst[0] = p.y
	case anim.PropertyXY:
		dst[0], dst[1] = p.x, p.y
		return 2
	case anim.PropertyProgress:
		dst[0] = p.progress
	}
	return 1
}

func (popupAccessor) SetValues(target any, prop anim.Property, values []float32) {
	p := target.(*Popup)
	switch prop {
	case anim.PropertyX:
		p.x = values[0]
	case anim.PropertyY:
		p.y = values[0]
	case anim.PropertyXY:
		p.x, p.y = values[0], values[1]
	case anim.PropertyProgress:
		p.progress = values[0]
	}
}
