package input

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/toast"
)

// EventType names a popup event reported to the command issuer.
type EventType string

const (
	EventShown  EventType = "shown"
	EventClick  EventType = "click"
	EventClosed EventType = "closed"
)

// Event reports something that happened to a popup.
type Event struct {
	Type  EventType `json:"event" yaml:"event"`
	ID    string    `json:"id" yaml:"id"`
	Title string    `json:"title,omitempty" yaml:"title,omitempty"`
	Time  time.Time `json:"time" yaml:"time"`
}

// Sounds plays cues for shown and shaken popups. *audio.Manager implements it.
type Sounds interface {
	Play(cue string) error
	PlayShow(kind string) error
}

var _ Sounds = (*audio.Manager)(nil)

// Result is the outcome of one executed command.
type Result struct {
	Op Op
	ID string // Popup the command acted on; empty for close-all and geometry
}

// Executor applies commands to a registry, filling unset request fields
// from the configuration.
type Executor struct {
	mu      sync.RWMutex
	reg     *toast.Registry
	cfg     *config.Config
	screens *toast.ScreenSet
	sounds  Sounds
	onEvent func(Event)
	now     func() time.Time
	logger  *slog.Logger
}

// NewExecutor creates an executor for reg. A nil cfg uses the defaults.
func NewExecutor(reg *toast.Registry, cfg *config.Config, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Executor{
		reg:    reg,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

// SetConfig replaces the configuration used for request defaults.
func (e *Executor) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg != nil {
		e.cfg = cfg
	}
}

// SetScreens sets the screen list that geometry commands update.
// Without one, geometry commands only relayout the registry.
func (e *Executor) SetScreens(screens *toast.ScreenSet) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.screens = screens
}

// SetSounds sets the sound cue player.
func (e *Executor) SetSounds(sounds Sounds) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sounds = sounds
}

// SetEventHandler sets the callback receiving popup events. It runs outside
// the registry lock and may issue further commands.
func (e *Executor) SetEventHandler(fn func(Event)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEvent = fn
}

// SetClock replaces the event timestamp source.
func (e *Executor) SetClock(now func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.now = now
}

func (e *Executor) emit(typ EventType, p *toast.Popup) {
	e.mu.RLock()
	fn, now := e.onEvent, e.now
	e.mu.RUnlock()
	if fn == nil {
		return
	}
	fn(Event{Type: typ, ID: p.ID(), Title: p.Content().Title, Time: now()})
}

func (e *Executor) play(fn func(Sounds) error) {
	e.mu.RLock()
	sounds := e.sounds
	e.mu.RUnlock()
	if sounds == nil {
		return
	}
	if err := fn(sounds); err != nil {
		e.logger.Warn("failed to play sound", "error", err)
	}
}

// Request converts a show command into a registry request.
func (e *Executor) Request(cmd Command) (toast.Request, error) {
	e.mu.RLock()
	cfg := e.cfg
	e.mu.RUnlock()

	kind, err := toast.ParseKind(cmd.Kind)
	if err != nil {
		return toast.Request{}, err
	}
	corner := toast.CornerUnset
	if cmd.Corner != "" {
		if corner, err = toast.ParseCorner(cmd.Corner); err != nil {
			return toast.Request{}, err
		}
	}

	req := toast.Request{
		Title:           cmd.Title,
		Text:            cmd.Text,
		Image:           config.ExpandPath(cmd.Image),
		Kind:            kind,
		Theme:           cmd.Theme,
		Corner:          corner,
		Screen:          toast.ScreenSelector(cfg.Display.Monitor),
		HideAfter:       cfg.Timeouts.HideAfter.Duration(),
		HideCloseButton: cfg.Behavior.HideCloseButton,
		KeepOnClick:     cfg.Behavior.KeepOnClick,
		OnClick:         func(p *toast.Popup) { e.emit(EventClick, p) },
		OnClose:         func(p *toast.Popup) { e.emit(EventClosed, p) },
	}
	if cmd.Screen != nil {
		req.Screen = toast.ScreenSelector(*cmd.Screen)
	}
	if cmd.HideAfter != nil {
		req.HideAfter = cmd.HideAfter.Duration()
	}
	if cmd.HideCloseButton != nil {
		req.HideCloseButton = *cmd.HideCloseButton
	}
	if cmd.KeepOnClick != nil {
		req.KeepOnClick = *cmd.KeepOnClick
	}
	if cmd.Shake != nil {
		req.Shake = &toast.ShakeRequest{
			Duration:  cmd.Shake.Duration.Duration(),
			Amplitude: cmd.Shake.Amplitude,
		}
		if req.Shake.Duration == 0 {
			req.Shake.Duration = cfg.Shake.Duration.Duration()
		}
		if req.Shake.Amplitude == 0 {
			req.Shake.Amplitude = cfg.Shake.Amplitude
		}
	}
	return req, nil
}

// Target resolves the popup a close, shake or click command refers to.
// Index counts live popups in show order.
func (e *Executor) Target(cmd Command) (string, error) {
	if cmd.ID != "" {
		return cmd.ID, nil
	}
	if cmd.Index == nil {
		return "", errors.New("no popup id or index")
	}
	popups := e.reg.Popups()
	if *cmd.Index < 0 || *cmd.Index >= len(popups) {
		return "", fmt.Errorf("%w: index %d of %d", toast.ErrUnknownPopup, *cmd.Index, len(popups))
	}
	return popups[*cmd.Index].ID(), nil
}

// Execute applies one command. A show whose image fails to load still
// shows the popup and reports no error.
func (e *Executor) Execute(cmd Command) (Result, error) {
	res := Result{Op: cmd.Op}

	switch cmd.Op {
	case OpShow:
		req, err := e.Request(cmd)
		if err != nil {
			return res, err
		}
		// ErrImageLoad comes back with a shown popup and is already logged.
		p, err := e.reg.Show(req)
		if p == nil {
			return res, err
		}
		res.ID = p.ID()
		e.play(func(s Sounds) error { return s.PlayShow(req.Kind.String()) })
		if req.Shake != nil && req.Shake.Duration > 0 && req.Shake.Amplitude > 0 {
			e.play(func(s Sounds) error { return s.Play(audio.CueShake) })
		}
		e.emit(EventShown, p)

	case OpClose:
		id, err := e.Target(cmd)
		if err != nil {
			return res, err
		}
		res.ID = id
		return res, e.reg.Close(id)

	case OpShake:
		id, err := e.Target(cmd)
		if err != nil {
			return res, err
		}
		res.ID = id

		e.mu.RLock()
		duration, amplitude := e.cfg.Shake.Duration.Duration(), e.cfg.Shake.Amplitude
		e.mu.RUnlock()
		if cmd.Duration > 0 {
			duration = cmd.Duration.Duration()
		}
		if cmd.Amplitude > 0 {
			amplitude = cmd.Amplitude
		}
		if err := e.reg.Shake(id, duration, amplitude); err != nil {
			return res, err
		}
		e.play(func(s Sounds) error { return s.Play(audio.CueShake) })

	case OpClick:
		id, err := e.Target(cmd)
		if err != nil {
			return res, err
		}
		res.ID = id
		return res, e.reg.Click(id, cmd.X, cmd.Y)

	case OpCloseAll:
		for _, p := range e.reg.Popups() {
			// A popup may close between listing and closing.
			if err := e.reg.Close(p.ID()); err != nil && !errors.Is(err, toast.ErrUnknownPopup) {
				return res, err
			}
		}

	case OpGeometry:
		e.mu.RLock()
		screens := e.screens
		e.mu.RUnlock()
		if screens != nil {
			screens.Set(cmd.ScreenID, *cmd.Bounds)
		}
		e.reg.RelayoutScreen(cmd.ScreenID, *cmd.Bounds)

	default:
		return res, fmt.Errorf("unknown op %q", cmd.Op)
	}

	return res, nil
}
