package toast

import (
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/frame"
)

const frameDt = 16 * time.Millisecond

var desktop = Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

type fakeSurface struct {
	mu       sync.Mutex
	x, y     int
	w, h     int
	visible  bool
	released int
	frames   []Frame
}

func (s *fakeSurface) Move(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

func (s *fakeSurface) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w, s.h = w, h
}

func (s *fakeSurface) SetVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = v
}

func (s *fakeSurface) Repaint(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

func (s *fakeSurface) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Rect{X: s.x, Y: s.y, Width: s.w, Height: s.h}
}

func (s *fakeSurface) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released++
}

func surfaceAt(s *fakeSurface) Point {
	b := s.Bounds()
	return Point{b.X, b.Y}
}

func (s *fakeSurface) lastFrame() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[len(s.frames)-1]
}

type fakeFactory struct {
	surfaces map[string]*fakeSurface
	err      error
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{surfaces: make(map[string]*fakeSurface)}
}

func (f *fakeFactory) NewSurface(p *Popup) (Surface, error) {
	if f.err != nil && !errors.Is(f.err, ErrImageLoad) {
		return nil, f.err
	}
	s := &fakeSurface{}
	f.surfaces[p.ID()] = s
	return s, f.err
}

type harness struct {
	reg     *Registry
	driver  *frame.Manual
	factory *fakeFactory
}

func newHarness(t *testing.T, layout Layout, screens ...Screen) *harness {
	t.Helper()
	if len(screens) == 0 {
		screens = []Screen{{ID: "0", Bounds: desktop}}
	}
	h := &harness{
		driver:  frame.NewManual(),
		factory: newFakeFactory(),
	}
	h.reg = NewRegistry(Options{
		Layout:       layout,
		Corner:       TopRight,
		MoveDuration: time.Second,
		Factory:      h.factory,
		Screens:      StaticScreens(screens),
		Driver:       h.driver,
		Rand:         mrand.New(mrand.NewPCG(1, 2)),
	}, nil)
	t.Cleanup(h.reg.Shutdown)
	return h
}

func (h *harness) show(t *testing.T, req Request) *Popup {
	t.Helper()
	p, err := h.reg.Show(req)
	require.NoError(t, err)
	return p
}

func (h *harness) settle() {
	h.driver.Advance(2*time.Second, frameDt)
}

func TestLayout_AnchorFormulas(t *testing.T) {
	l := DefaultLayout()
	l.Padding = 40

	assert.Equal(t, Point{40, 40}, l.Anchor(TopLeft, desktop))
	assert.Equal(t, Point{1580, 40}, l.Anchor(TopRight, desktop))
	assert.Equal(t, Point{40, 953}, l.Anchor(BottomLeft, desktop))
	assert.Equal(t, Point{1580, 953}, l.Anchor(BottomRight, desktop))
	assert.Equal(t, Point{810, 486}, l.Anchor(Center, desktop))
	assert.Equal(t, Point{810, 40}, l.Anchor(TopCenter, desktop))
	assert.Equal(t, Point{810, 953}, l.Anchor(BottomCenter, desktop))
}

func TestLayout_AnchorOffsetScreen(t *testing.T) {
	l := DefaultLayout()
	second := Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	assert.Equal(t, Point{1920 + 1280 - 300 - 20, 20}, l.Anchor(TopRight, second))
}

func TestLayout_InvalidCornerPanics(t *testing.T) {
	assert.Panics(t, func() { DefaultLayout().Anchor(Corner(42), desktop) })
	assert.Panics(t, func() { CornerUnset.GrowsDown() })
}

func TestLayout_InCloseRegion(t *testing.T) {
	l := DefaultLayout()
	assert.True(t, l.InCloseRegion(290, 5))
	assert.True(t, l.InCloseRegion(280, 20))
	assert.False(t, l.InCloseRegion(279, 5))
	assert.False(t, l.InCloseRegion(290, 21))
	assert.False(t, l.InCloseRegion(10, 10))
}

func TestParseCorner(t *testing.T) {
	for _, c := range Corners() {
		parsed, err := ParseCorner(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}

	_, err := ParseCorner("middle-ish")
	assert.Error(t, err)
}

func TestRegistry_StackingOrder(t *testing.T) {
	for _, corner := range Corners() {
		t.Run(corner.String(), func(t *testing.T) {
			h := newHarness(t, DefaultLayout())
			l := h.reg.Layout()

			var popups []*Popup
			for i := 0; i < 4; i++ {
				popups = append(popups, h.show(t, Request{Title: fmt.Sprint(i), Corner: corner}))
			}
			h.settle()

			anchor := l.Anchor(corner, desktop)
			for i, p := range popups {
				step := i * (l.Height + l.Gap)
				want := Point{anchor.X, anchor.Y + step}
				if !corner.GrowsDown() {
					want.Y = anchor.Y - step
				}
				assert.Equal(t, i, p.Index())
				assert.Equal(t, want, p.Position())
				assert.Equal(t, want, surfaceAt(h.factory.surfaces[p.ID()]))
			}
		})
	}
}

func TestRegistry_InsertSnapsWithoutAnimation(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{Corner: BottomLeft})

	assert.Equal(t, Point{20, 1080 - 87 - 20}, p.Position())
	assert.Equal(t, StateVisible, p.State())
	assert.True(t, h.factory.surfaces[p.ID()].visible)
	assert.Equal(t, 300, h.factory.surfaces[p.ID()].w)
}

func TestRegistry_ReflowClosesGaps(t *testing.T) {
	for k := 0; k < 5; k++ {
		t.Run(fmt.Sprintf("remove %d", k), func(t *testing.T) {
			h := newHarness(t, DefaultLayout())
			var popups []*Popup
			for i := 0; i < 5; i++ {
				popups = append(popups, h.show(t, Request{Corner: BottomRight}))
			}

			before := make([]Point, len(popups))
			for i, p := range popups {
				before[i] = p.Position()
			}

			popups[k].Close()
			h.driver.Step(frameDt)

			for i, p := range popups {
				if i == k {
					assert.Equal(t, StateClosed, p.State())
					continue
				}
				switch {
				case i < k:
					assert.Equal(t, i, p.Index())
					assert.Equal(t, before[i], p.Position(), "popup below the removed one must not move")
				default:
					assert.Equal(t, i-1, p.Index())
					assert.NotEqual(t, before[i], p.Position(), "popup above the removed one slides")
				}
			}

			h.settle()
			for i, p := range popups {
				if i > k {
					assert.Equal(t, before[i-1], p.Position())
				}
			}
		})
	}
}

func TestRegistry_CountdownDeterminism(t *testing.T) {
	tests := []time.Duration{time.Millisecond, 5 * time.Second, 50 * time.Second}

	for _, hideAfter := range tests {
		t.Run(hideAfter.String(), func(t *testing.T) {
			h := newHarness(t, DefaultLayout())
			var closedAt time.Duration
			closes := 0
			p := h.show(t, Request{
				HideAfter: hideAfter,
				OnClose: func(*Popup) {
					closes++
					closedAt = h.driver.Elapsed()
				},
			})

			for closes == 0 && h.driver.Elapsed() < hideAfter+time.Second {
				h.driver.Step(frameDt)
			}

			require.Equal(t, 1, closes)
			assert.GreaterOrEqual(t, closedAt, hideAfter)
			assert.LessOrEqual(t, closedAt, hideAfter+frameDt)
			assert.Equal(t, StateClosed, p.State())
			assert.Equal(t, float32(300), p.Progress())
			assert.Equal(t, 1, h.factory.surfaces[p.ID()].released)
		})
	}
}

func TestRegistry_CountdownProgress(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{HideAfter: time.Second})

	h.driver.Step(500 * time.Millisecond)
	assert.InDelta(t, 150, p.Progress(), 0.5)
	f := h.factory.surfaces[p.ID()].lastFrame()
	assert.Equal(t, 150, f.Progress)
	assert.True(t, f.Countdown)
}

func TestRegistry_NeverHides(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{HideAfter: 0})
	negative := h.show(t, Request{HideAfter: -time.Second})

	h.driver.Advance(time.Minute, 100*time.Millisecond)
	assert.Equal(t, StateVisible, p.State())
	assert.Equal(t, StateVisible, negative.State())
	assert.Zero(t, p.Progress())
	assert.Zero(t, negative.HideAfter())
}

func TestRegistry_IdempotentClose(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	closes := 0
	p := h.show(t, Request{
		HideAfter: 100 * time.Millisecond,
		OnClose:   func(*Popup) { closes++ },
	})

	p.Close()
	p.Close()
	assert.ErrorIs(t, h.reg.Close(p.ID()), ErrUnknownPopup)
	h.driver.Advance(time.Second, frameDt)

	assert.Equal(t, 1, closes)
	assert.Equal(t, 1, h.factory.surfaces[p.ID()].released)
}

func TestRegistry_CountdownRacesManualClose(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	closes := 0
	p := h.show(t, Request{
		HideAfter: 10 * time.Millisecond,
		OnClose:   func(*Popup) { closes++ },
	})

	h.driver.Step(10 * time.Millisecond)
	p.Close()
	h.driver.Step(frameDt)

	assert.Equal(t, 1, closes)
}

func TestRegistry_ShakeReturnsToOrigin(t *testing.T) {
	tests := []struct {
		duration  time.Duration
		amplitude int
	}{
		{50 * time.Millisecond, 4},
		{100 * time.Millisecond, 10},
		{333 * time.Millisecond, 7},
		{time.Second, 40},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.duration, tt.amplitude), func(t *testing.T) {
			h := newHarness(t, DefaultLayout())
			p := h.show(t, Request{})
			origin := p.Position()

			require.NoError(t, h.reg.Shake(p.ID(), tt.duration, tt.amplitude))

			moved := false
			for i := 0; i < 200; i++ {
				h.driver.Step(7 * time.Millisecond)
				if p.Position() != origin {
					moved = true
				}
			}
			assert.True(t, moved)
			assert.Equal(t, origin, p.Position())
			assert.Equal(t, origin, surfaceAt(h.factory.surfaces[p.ID()]))
		})
	}
}

func TestRegistry_ShakeDuringSlideEndsAtSlot(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	first := h.show(t, Request{})
	second := h.show(t, Request{})
	slot0 := first.Position()

	first.Close()
	h.driver.Step(100 * time.Millisecond)
	require.NoError(t, h.reg.Shake(second.ID(), 200*time.Millisecond, 10))
	h.settle()

	assert.Equal(t, slot0, second.Position())
}

func TestRegistry_ShakeDisplacementBounds(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	for i := 0; i < 500; i++ {
		d := h.reg.displacement(12)
		abs := max(d, -d)
		assert.GreaterOrEqual(t, abs, 3)
		assert.LessOrEqual(t, abs, 6)
	}
}

func TestRegistry_ShakeSmallAmplitudeMoves(t *testing.T) {
	for _, amplitude := range []int{1, 2, 3} {
		h := newHarness(t, DefaultLayout())
		p := h.show(t, Request{})
		origin := p.Position()

		require.NoError(t, h.reg.Shake(p.ID(), 500*time.Millisecond, amplitude))
		h.driver.Step(shakeCycle)
		assert.NotEqual(t, origin, p.Position(), "amplitude %d", amplitude)

		h.settle()
		assert.Equal(t, origin, p.Position(), "amplitude %d", amplitude)

		for i := 0; i < 100; i++ {
			d := h.reg.displacement(amplitude)
			assert.Equal(t, 1, max(d, -d), "amplitude %d", amplitude)
		}
	}
}

func TestRegistry_ShakeDisplacementKeepsSign(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	const draws = 4000
	negative := 0
	for i := 0; i < draws; i++ {
		if h.reg.displacement(12) < 0 {
			negative++
		}
	}
	// 12 of the 25 draws in [-12, 12] are negative.
	assert.InDelta(t, 12.0/25.0, float64(negative)/draws, 0.04)
	assert.Zero(t, h.reg.displacement(0))
}

func TestRegistry_InvalidCornerPanics(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	assert.Panics(t, func() { _, _ = h.reg.Show(Request{Corner: Corner(99)}) })
	assert.Zero(t, h.reg.Len())
}

func TestRegistry_ShakeIgnoredWhenNotMeaningful(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{})
	origin := p.Position()

	require.NoError(t, h.reg.Shake(p.ID(), 0, 10))
	require.NoError(t, h.reg.Shake(p.ID(), time.Second, 0))
	h.driver.Step(frameDt)
	assert.Equal(t, origin, p.Position())

	assert.ErrorIs(t, h.reg.Shake("nope", time.Second, 4), ErrUnknownPopup)
}

func TestRegistry_ShowAppliesShake(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{Shake: &ShakeRequest{Duration: 200 * time.Millisecond, Amplitude: 20}})
	origin := h.reg.Layout().Slot(TopRight, desktop, 0)

	h.driver.Step(25 * time.Millisecond)
	assert.NotEqual(t, origin, p.Position())
	h.settle()
	assert.Equal(t, origin, p.Position())
}

func TestRegistry_EndToEnd(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	l := h.reg.Layout()

	var popups []*Popup
	for i := 0; i < 3; i++ {
		popups = append(popups, h.show(t, Request{Title: fmt.Sprint(i), Corner: TopRight}))
	}
	slot := func(i int) Point { return l.Slot(TopRight, desktop, i) }

	require.NoError(t, h.reg.Close(popups[1].ID()))

	assert.Equal(t, 0, popups[0].Index())
	assert.Equal(t, 1, popups[2].Index())
	assert.Equal(t, slot(2), popups[2].Position(), "slide starts from the old slot")

	h.driver.Step(500 * time.Millisecond)
	mid := popups[2].Position()
	assert.Equal(t, slot(0), popups[0].Position())
	assert.Equal(t, slot(1).X, mid.X)
	assert.InDelta(t, float64(slot(1).Y+slot(2).Y)/2, float64(mid.Y), 1)

	h.driver.Step(500 * time.Millisecond)
	assert.Equal(t, slot(1), popups[2].Position())
	assert.Equal(t, slot(0), popups[0].Position())

	key := AnchorKey{Screen: "0", Corner: TopRight}
	group := h.reg.Group(key)
	require.Len(t, group, 2)
	assert.Same(t, popups[0], group[0])
	assert.Same(t, popups[2], group[1])
}

func TestRegistry_ClickBodyAndCloseButton(t *testing.T) {
	h := newHarness(t, DefaultLayout())

	var clicked, closed []string
	req := func(keep bool) Request {
		return Request{
			KeepOnClick: keep,
			OnClick:     func(p *Popup) { clicked = append(clicked, p.ID()) },
			OnClose:     func(p *Popup) { closed = append(closed, p.ID()) },
		}
	}

	body := h.show(t, req(false))
	require.NoError(t, h.reg.Click(body.ID(), 50, 50))
	assert.Equal(t, []string{body.ID()}, clicked)
	assert.Equal(t, []string{body.ID()}, closed)

	kept := h.show(t, req(true))
	require.NoError(t, h.reg.Click(kept.ID(), 50, 50))
	assert.Equal(t, StateVisible, kept.State())
	assert.Len(t, clicked, 2)

	require.NoError(t, h.reg.Click(kept.ID(), 295, 5))
	assert.Equal(t, StateClosed, kept.State())
	assert.Len(t, clicked, 2, "close button does not fire OnClick")
	assert.Len(t, closed, 2)
}

func TestRegistry_HiddenCloseButtonIsBody(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	clicks := 0
	p := h.show(t, Request{
		HideCloseButton: true,
		KeepOnClick:     true,
		OnClick:         func(*Popup) { clicks++ },
	})

	require.NoError(t, h.reg.Click(p.ID(), 295, 5))
	assert.Equal(t, 1, clicks)
	assert.Equal(t, StateVisible, p.State())

	require.NoError(t, h.reg.Pointer(p.ID(), 295, 5))
	assert.False(t, h.factory.surfaces[p.ID()].lastFrame().CloseHover)
}

func TestRegistry_PointerHover(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{})
	s := h.factory.surfaces[p.ID()]

	require.NoError(t, h.reg.Pointer(p.ID(), 290, 10))
	assert.True(t, s.lastFrame().CloseHover)

	require.NoError(t, h.reg.Leave(p.ID()))
	assert.False(t, s.lastFrame().CloseHover)

	assert.ErrorIs(t, h.reg.Pointer("missing", 0, 0), ErrUnknownPopup)
}

func TestRegistry_CallbacksMayReenter(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	var followUp *Popup
	p := h.show(t, Request{
		OnClose: func(*Popup) {
			followUp, _ = h.reg.Show(Request{Title: "next"})
		},
	})

	p.Close()
	require.NotNil(t, followUp)
	assert.Equal(t, 0, followUp.Index())
}

func TestRegistry_DriverLifecycle(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	assert.False(t, h.driver.Running())

	a := h.show(t, Request{})
	b := h.show(t, Request{Corner: BottomLeft})
	assert.True(t, h.driver.Running())
	assert.Equal(t, 1, h.driver.Starts())

	a.Close()
	assert.True(t, h.driver.Running())
	b.Close()
	assert.False(t, h.driver.Running())
	assert.Equal(t, 1, h.driver.Stops())

	h.show(t, Request{})
	assert.Equal(t, 2, h.driver.Starts())
}

func TestRegistry_ScreenSelection(t *testing.T) {
	second := Rect{X: 1920, Y: 0, Width: 1280, Height: 1024}
	h := newHarness(t, DefaultLayout(),
		Screen{ID: "left", Bounds: desktop},
		Screen{ID: "right", Bounds: second},
	)

	assert.Equal(t, "right", h.show(t, Request{Screen: 1}).Key().Screen)
	assert.Equal(t, "right", h.show(t, Request{Screen: 7}).Key().Screen)
	assert.Equal(t, "left", h.show(t, Request{Screen: -5}).Key().Screen)
	assert.Equal(t, "left", h.show(t, Request{Screen: ScreenUnderPointer}).Key().Screen)
}

func TestRegistry_NoScreens(t *testing.T) {
	reg := NewRegistry(Options{Factory: newFakeFactory(), Screens: StaticScreens(nil)}, nil)
	_, err := reg.Show(Request{})
	assert.ErrorIs(t, err, ErrNoScreen)
}

func TestRegistry_ImageLoadErrorStillShows(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	h.factory.err = fmt.Errorf("%w: missing.png", ErrImageLoad)

	p, err := h.reg.Show(Request{Image: "missing.png"})
	assert.ErrorIs(t, err, ErrImageLoad)
	require.NotNil(t, p)
	assert.Equal(t, StateVisible, p.State())
}

func TestRegistry_FactoryErrorAborts(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	h.factory.err = errors.New("no display")

	p, err := h.reg.Show(Request{})
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Zero(t, h.reg.Len())
	assert.False(t, h.driver.Running())
}

func TestRegistry_RelayoutSnaps(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	a := h.show(t, Request{})
	b := h.show(t, Request{})
	a.Close()
	h.driver.Step(100 * time.Millisecond)

	moved := Rect{X: 100, Y: 50, Width: 1280, Height: 720}
	h.reg.RelayoutScreen("0", moved)

	l := h.reg.Layout()
	assert.Equal(t, l.Slot(TopRight, moved, 0), b.Position())
	h.settle()
	assert.Equal(t, l.Slot(TopRight, moved, 0), b.Position(), "cancelled slide must not resume")
}

func TestRegistry_Reconfigure(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{})

	l := DefaultLayout()
	l.Width, l.Padding = 400, 50
	h.reg.Reconfigure(Options{Layout: l, MoveDuration: 200 * time.Millisecond})

	assert.Equal(t, l.Slot(TopRight, desktop, 0), p.Position())
	assert.Equal(t, 400, h.factory.surfaces[p.ID()].w)
}

func TestRegistry_ReconfigureRescalesCountdown(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	p := h.show(t, Request{HideAfter: time.Second})

	h.driver.Step(500 * time.Millisecond)
	assert.InDelta(t, 150, p.Progress(), 0.5)

	l := DefaultLayout()
	l.Width = 400
	h.reg.Reconfigure(Options{Layout: l, MoveDuration: time.Second})
	assert.InDelta(t, 200, p.Progress(), 0.5)

	h.driver.Step(250 * time.Millisecond)
	assert.InDelta(t, 300, p.Progress(), 0.5)

	h.driver.Step(250 * time.Millisecond)
	assert.Equal(t, StateClosed, p.State())
	assert.Zero(t, h.reg.Len())
}

func TestRegistry_SnapshotAndShutdown(t *testing.T) {
	h := newHarness(t, DefaultLayout())
	closes := 0
	onClose := func(*Popup) { closes++ }
	h.show(t, Request{Title: "a", Text: "hello", Kind: KindWarning, OnClose: onClose})
	h.show(t, Request{Title: "b", OnClose: onClose})

	frames := h.reg.Snapshot()
	require.Len(t, frames, 2)
	assert.Equal(t, "a", frames[0].Title)
	assert.Equal(t, KindWarning, frames[0].Kind)
	assert.Equal(t, 1, frames[1].Index)
	assert.Equal(t, StateVisible, frames[1].State)

	h.reg.Shutdown()
	h.reg.Shutdown()
	assert.Equal(t, 2, closes)
	assert.Zero(t, h.reg.Len())
	assert.False(t, h.driver.Running())

	_, err := h.reg.Show(Request{})
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Display.Corner = "top-left"
	cfg.Display.MoveEasing = "out-cubic"

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, TopLeft, opts.Corner)
	assert.Equal(t, DefaultLayout(), opts.Layout)
	assert.Equal(t, time.Second, opts.MoveDuration)
	assert.NotNil(t, opts.MoveEase)

	cfg.Display.MoveEasing = "wobble"
	_, err = OptionsFromConfig(cfg)
	assert.Error(t, err)
}

func TestContent_Summary(t *testing.T) {
	long := ""
	for i := 0; i < 120; i++ {
		long += "x"
	}

	assert.Equal(t, "short", Content{Text: "short"}.Summary())
	assert.Len(t, Content{Text: long}.Summary(), 108+3)
	assert.Len(t, Content{Text: long, Image: "a.png"}.Summary(), 88+3)
	assert.Equal(t, "héll...", Truncate("héllo", 4))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("warning")
	require.NoError(t, err)
	assert.Equal(t, KindWarning, k)

	k, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindPlain, k)

	_, err = ParseKind("panic")
	assert.Error(t, err)
	assert.Equal(t, "dialog-warning", KindWarning.IconName())
}
