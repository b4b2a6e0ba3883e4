// Package toast stacks notification popups at screen anchors and animates
// them through their lifecycle.
//
// A Registry groups popups by AnchorKey. Inserting a popup places it in the
// next free slot of its stack; removing one slides every popup above it down
// one slot. Countdown, reflow and shake are tweens scheduled on a single
// anim.Animator that a render Driver advances once per frame via Tick.
package toast

import (
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/jmylchreest/toasty/internal/anim"
	"github.com/jmylchreest/toasty/internal/config"
)

// shakeCycle is the length of one shake swing.
const shakeCycle = 50 * time.Millisecond

// Options configures a Registry.
type Options struct {
	Layout       Layout
	Corner       Corner         // Used when a request leaves Corner unset
	MoveDuration time.Duration  // Length of a reflow slide
	MoveEase     ease.TweenFunc // Easing of reflow slides, linear when nil

	Factory SurfaceFactory
	Screens Screens
	Driver  Driver

	// Rand drives shake displacement. Nil uses a randomly seeded source.
	Rand *mrand.Rand
}

// OptionsFromConfig converts the display configuration into registry options.
// Factory, Screens and Driver are left for the caller to set.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	corner, err := ParseCorner(cfg.Display.Corner)
	if err != nil {
		return Options{}, err
	}
	easing, ok := anim.EaseByName(cfg.Display.MoveEasing)
	if !ok {
		return Options{}, fmt.Errorf("unknown easing %q, must be one of: %v", cfg.Display.MoveEasing, anim.EaseNames())
	}

	return Options{
		Layout: Layout{
			Width:       cfg.Display.Width,
			Height:      cfg.Display.Height,
			Padding:     cfg.Display.Padding,
			Gap:         cfg.Display.Gap,
			CloseRegion: cfg.Display.CloseRegion,
		},
		Corner:       corner,
		MoveDuration: cfg.Display.MoveDuration.Duration(),
		MoveEase:     easing,
	}, nil
}

// group is one stack of popups sharing an anchor key.
type group struct {
	key    AnchorKey
	bounds Rect
	popups []*Popup
}

// Registry owns every live popup, grouped by anchor.
type Registry struct {
	mu sync.Mutex

	layout       Layout
	corner       Corner
	moveDuration time.Duration
	moveEase     ease.TweenFunc

	factory SurfaceFactory
	screens Screens
	driver  Driver
	rng     *mrand.Rand
	logger  *slog.Logger

	animator *anim.Animator
	popups   map[string]*Popup
	order    []*Popup
	groups   map[AnchorKey]*group
	running  bool
	shutdown bool

	// Callbacks queued under mu, run after unlock.
	pending []func()
}

// NewRegistry creates a registry. Factory and Screens are required.
func NewRegistry(opts Options, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Layout == (Layout{}) {
		opts.Layout = DefaultLayout()
	}
	if opts.Corner == CornerUnset {
		opts.Corner = BottomRight
	}
	if opts.MoveEase == nil {
		opts.MoveEase = ease.Linear
	}
	if opts.Rand == nil {
		opts.Rand = mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64()))
	}

	r := &Registry{
		layout:       opts.Layout,
		corner:       opts.Corner,
		moveDuration: opts.MoveDuration,
		moveEase:     opts.MoveEase,
		factory:      opts.Factory,
		screens:      opts.Screens,
		driver:       opts.Driver,
		rng:          opts.Rand,
		logger:       logger,
		popups:       make(map[string]*Popup),
		groups:       make(map[AnchorKey]*group),
	}
	r.animator = anim.NewAnimator(r.complete)
	return r
}

// Layout returns the current popup geometry.
func (r *Registry) Layout() Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// Show creates a popup for req and adds it to its stack.
// An error wrapping ErrImageLoad is returned together with the shown popup.
// A Corner outside the enumerated set panics.
func (r *Registry) Show(req Request) (*Popup, error) {
	if _, ok := cornerNames[req.Corner]; !ok && req.Corner != CornerUnset {
		panic(fmt.Sprintf("toast: invalid corner %d", int(req.Corner)))
	}
	r.mu.Lock()
	p, err := r.showLocked(req)
	r.unlock()
	return p, err
}

func (r *Registry) showLocked(req Request) (*Popup, error) {
	if r.shutdown {
		return nil, ErrShutdown
	}

	screens := r.screens.Screens()
	if len(screens) == 0 {
		return nil, ErrNoScreen
	}
	screen := screens[r.resolveScreen(req.Screen, len(screens))]

	corner := req.Corner
	if corner == CornerUnset {
		corner = r.corner
	}

	p, err := newPopup(r, AnchorKey{Screen: screen.ID, Corner: corner}, req)
	if err != nil {
		return nil, fmt.Errorf("failed to generate popup id: %w", err)
	}

	surface, err := r.factory.NewSurface(p)
	var imageErr error
	if err != nil {
		if !errors.Is(err, ErrImageLoad) || surface == nil {
			return nil, fmt.Errorf("failed to create surface: %w", err)
		}
		r.logger.Warn("popup shown without image", "popup", p.id, "image", req.Image, "error", err)
		imageErr = err
	}
	if surface == nil {
		return nil, errors.New("failed to create surface: factory returned no surface")
	}
	p.surface = surface

	r.addLocked(p, screen.Bounds)

	if req.Shake != nil {
		r.shakeLocked(p, req.Shake.Duration, req.Shake.Amplitude)
	}

	return p, imageErr
}

// resolveScreen maps a selector onto a valid screen index.
func (r *Registry) resolveScreen(sel ScreenSelector, n int) int {
	i := int(sel)
	if sel == ScreenUnderPointer {
		i = r.screens.PointerScreen()
	}
	return max(0, min(i, n-1))
}

// addLocked appends p to its stack and makes it visible.
func (r *Registry) addLocked(p *Popup, bounds Rect) {
	g, ok := r.groups[p.key]
	if !ok {
		g = &group{key: p.key, bounds: bounds}
		r.groups[p.key] = g
	} else if g.bounds != bounds {
		r.relayoutLocked(g, bounds)
	}

	p.index = len(g.popups)
	g.popups = append(g.popups, p)
	r.popups[p.id] = p
	r.order = append(r.order, p)

	r.snapLocked(p, g)
	p.surface.Resize(r.layout.Width, r.layout.Height)
	p.surface.SetVisible(true)
	p.state = StateVisible

	if p.hideAfter > 0 {
		p.hide = r.animator.Start(anim.To(p, anim.PropertyProgress, popupAccessor{}, p.hideAfter).
			Target(float32(r.layout.Width)).
			Tag(tweenHide, p))
	}

	if !r.running && r.driver != nil {
		r.driver.Start(r.Tick)
		r.running = true
	}

	p.surface.Repaint(p.frame(r.layout))
	r.logger.Debug("popup shown", "popup", p.id, "anchor", p.key.String(), "index", p.index)
}

// removeLocked drops p from its stack and slides the popups above it down.
func (r *Registry) removeLocked(p *Popup) {
	cancel(&p.move)
	cancel(&p.hide)
	cancel(&p.shake)

	delete(r.popups, p.id)
	if i := slices.Index(r.order, p); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}

	g, ok := r.groups[p.key]
	if !ok {
		return
	}
	if i := slices.Index(g.popups, p); i >= 0 {
		g.popups = slices.Delete(g.popups, i, i+1)
		for j := i; j < len(g.popups); j++ {
			sibling := g.popups[j]
			sibling.index = j
			r.slideLocked(sibling, g)
		}
	}
	if len(g.popups) == 0 {
		delete(r.groups, p.key)
	}

	if len(r.popups) == 0 && r.running {
		r.driver.Stop()
		r.running = false
	}
}

// slideLocked animates p from its current position to its slot.
func (r *Registry) slideLocked(p *Popup, g *group) {
	cancel(&p.move)
	cancel(&p.shake)

	dest := r.layout.Slot(p.key.Corner, g.bounds, p.index)
	p.move = r.animator.Start(anim.To(p, anim.PropertyXY, popupAccessor{}, r.moveDuration).
		Ease(r.moveEase).
		Target(float32(dest.X), float32(dest.Y)).
		Tag(tweenMove, p))
}

// snapLocked places p at its slot immediately.
func (r *Registry) snapLocked(p *Popup, g *group) {
	p.anchor = r.layout.Anchor(p.key.Corner, g.bounds)
	slot := r.layout.Slot(p.key.Corner, g.bounds, p.index)
	p.x, p.y = float32(slot.X), float32(slot.Y)
	p.drawn = slot
	p.surface.Move(slot.X, slot.Y)
}

// relayoutLocked re-anchors a stack to new screen bounds without animation.
func (r *Registry) relayoutLocked(g *group, bounds Rect) {
	g.bounds = bounds
	for _, p := range g.popups {
		cancel(&p.move)
		cancel(&p.shake)
		r.snapLocked(p, g)
	}
}

// Relayout re-anchors the stack for key after its screen geometry changed.
func (r *Registry) Relayout(key AnchorKey, bounds Rect) {
	r.mu.Lock()
	defer r.unlock()

	if g, ok := r.groups[key]; ok {
		r.relayoutLocked(g, bounds)
	}
}

// RelayoutScreen re-anchors every stack on the screen with the given id.
func (r *Registry) RelayoutScreen(screenID string, bounds Rect) {
	r.mu.Lock()
	defer r.unlock()

	for key, g := range r.groups {
		if key.Screen == screenID {
			r.relayoutLocked(g, bounds)
		}
	}
	r.logger.Debug("screen geometry changed", "screen", screenID, "bounds", bounds)
}

// Reconfigure applies new layout and animation settings. Factory, Screens,
// Driver and Rand in opts are ignored. Every stack is re-anchored.
func (r *Registry) Reconfigure(opts Options) {
	r.mu.Lock()
	defer r.unlock()

	oldWidth := r.layout.Width
	if opts.Layout != (Layout{}) {
		r.layout = opts.Layout
	}
	if opts.Corner != CornerUnset {
		r.corner = opts.Corner
	}
	r.moveDuration = opts.MoveDuration
	if opts.MoveEase != nil {
		r.moveEase = opts.MoveEase
	}

	for _, g := range r.groups {
		for _, p := range g.popups {
			p.surface.Resize(r.layout.Width, r.layout.Height)
			if r.layout.Width != oldWidth {
				r.rescaleCountdownLocked(p, oldWidth)
			}
		}
		r.relayoutLocked(g, g.bounds)
	}
}

// rescaleCountdownLocked keeps a running countdown proportional to a new
// popup width. The remaining time is unchanged.
func (r *Registry) rescaleCountdownLocked(p *Popup, oldWidth int) {
	if p.hide == nil || !p.hide.Active() || oldWidth <= 0 {
		return
	}
	remaining := p.hide.TotalDuration() - p.hide.Elapsed()
	cancel(&p.hide)
	p.progress = p.progress * float32(r.layout.Width) / float32(oldWidth)
	p.hide = r.animator.Start(anim.To(p, anim.PropertyProgress, popupAccessor{}, max(remaining, 0)).
		Target(float32(r.layout.Width)).
		Tag(tweenHide, p))
}

// Close closes the popup with the given id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.unlock()

	p, ok := r.popups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	r.closeLocked(p)
	return nil
}

// closeLocked runs Visible -> Closing -> Closed.
func (r *Registry) closeLocked(p *Popup) {
	if p.state != StateVisible {
		return
	}
	p.state = StateClosing
	r.removeLocked(p)

	p.surface.SetVisible(false)
	p.surface.Release()
	p.state = StateClosed
	r.logger.Debug("popup closed", "popup", p.id)

	if p.onClose != nil {
		cb := p.onClose
		r.pending = append(r.pending, func() { cb(p) })
	}
}

// Click handles a pointer release at popup-local (x, y).
func (r *Registry) Click(id string, x, y int) error {
	r.mu.Lock()
	defer r.unlock()

	p, ok := r.popups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	if p.state != StateVisible {
		return nil
	}

	if !p.hideCloseButton && r.layout.InCloseRegion(x, y) {
		r.closeLocked(p)
		return nil
	}

	if p.onClick != nil {
		cb := p.onClick
		r.pending = append(r.pending, func() { cb(p) })
	}
	if !p.keepOnClick {
		r.closeLocked(p)
	}
	return nil
}

// Pointer tracks the pointer at popup-local (x, y) for close-button hover.
func (r *Registry) Pointer(id string, x, y int) error {
	r.mu.Lock()
	defer r.unlock()

	p, ok := r.popups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	r.setHoverLocked(p, !p.hideCloseButton && r.layout.InCloseRegion(x, y))
	return nil
}

// Leave clears hover state when the pointer leaves a popup.
func (r *Registry) Leave(id string) error {
	r.mu.Lock()
	defer r.unlock()

	p, ok := r.popups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	r.setHoverLocked(p, false)
	return nil
}

func (r *Registry) setHoverLocked(p *Popup, hover bool) {
	if p.state != StateVisible || p.closeHover == hover {
		return
	}
	p.closeHover = hover
	p.surface.Repaint(p.frame(r.layout))
}

// Shake jiggles a popup around its slot for duration. amplitude is the
// largest per-axis displacement, in pixels, the random offsets derive from.
func (r *Registry) Shake(id string, duration time.Duration, amplitude int) error {
	r.mu.Lock()
	defer r.unlock()

	p, ok := r.popups[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPopup, id)
	}
	r.shakeLocked(p, duration, amplitude)
	return nil
}

func (r *Registry) shakeLocked(p *Popup, duration time.Duration, amplitude int) {
	if p.state != StateVisible || duration <= 0 || amplitude <= 0 {
		return
	}

	// Settle at the slot first so the shake ends where the popup belongs.
	cancel(&p.move)
	cancel(&p.shake)
	if g, ok := r.groups[p.key]; ok {
		slot := r.layout.Slot(p.key.Corner, g.bounds, p.index)
		p.x, p.y = float32(slot.X), float32(slot.Y)
	}

	count := int(duration / shakeCycle)
	if count%2 == 0 {
		count++
	}
	dx, dy := r.displacement(amplitude), r.displacement(amplitude)

	p.shake = r.animator.Start(anim.To(p, anim.PropertyXY, popupAccessor{}, shakeCycle).
		TargetRelative(float32(dx), float32(dy)).
		RepeatAutoReverse(count).
		Tag(tweenShake, p))
	r.logger.Debug("popup shake", "popup", p.id, "cycles", count+1, "dx", dx, "dy", dy)
}

// displacement picks an offset in [-amplitude, amplitude] scaled by a
// quarter and pushed outward by max(1, amplitude/4), keeping the sign of
// the draw. A positive amplitude never yields zero.
func (r *Registry) displacement(amplitude int) int {
	if amplitude <= 0 {
		return 0
	}
	raw := r.rng.IntN(2*amplitude+1) - amplitude
	push := max(1, amplitude/4)
	if raw < 0 {
		return -(-raw/4 + push)
	}
	return raw/4 + push
}

// complete resolves a finished tween against its popup's live state.
func (r *Registry) complete(t *anim.Tween) {
	p, ok := t.Owner().(*Popup)
	if !ok {
		return
	}
	switch t.Kind() {
	case tweenHide:
		if p.hide == t {
			p.hide = nil
			r.closeLocked(p)
		}
	case tweenMove:
		if p.move == t {
			p.move = nil
		}
	case tweenShake:
		if p.shake == t {
			p.shake = nil
		}
	}
}

// Tick advances every animation by dt and repaints visible popups.
func (r *Registry) Tick(dt time.Duration) {
	r.mu.Lock()
	defer r.unlock()

	if r.shutdown {
		return
	}
	r.animator.Update(dt)

	for _, p := range r.order {
		if p.state != StateVisible {
			continue
		}
		if pos := p.position(); pos != p.drawn {
			p.drawn = pos
			p.surface.Move(pos.X, pos.Y)
		}
		p.surface.Repaint(p.frame(r.layout))
	}
}

// Snapshot returns the draw instructions of every visible popup in show order.
func (r *Registry) Snapshot() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := make([]Frame, 0, len(r.order))
	for _, p := range r.order {
		if p.state == StateVisible {
			frames = append(frames, p.frame(r.layout))
		}
	}
	return frames
}

// Len returns the number of live popups.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.popups)
}

// Popups returns the live popups in show order.
func (r *Registry) Popups() []*Popup {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Group returns the popups of one stack ordered by index.
func (r *Registry) Group(key AnchorKey) []*Popup {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.groups[key]
	if !ok {
		return nil
	}
	return slices.Clone(g.popups)
}

// Get returns the live popup with the given id.
func (r *Registry) Get(id string) (*Popup, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.popups[id]
	return p, ok
}

// Running reports whether the render driver is started.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Shutdown closes every popup and stops the driver. Later calls do nothing.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.unlock()

	if r.shutdown {
		return
	}
	for _, p := range slices.Clone(r.order) {
		r.closeLocked(p)
	}
	r.animator.CancelAll()
	if r.running {
		r.driver.Stop()
		r.running = false
	}
	r.shutdown = true
}

// unlock releases mu and runs the callbacks queued while it was held.
func (r *Registry) unlock() {
	callbacks := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
}

func cancel(t **anim.Tween) {
	if *t != nil {
		(*t).Cancel()
		*t = nil
	}
}
