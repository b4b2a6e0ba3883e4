package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	mrand "math/rand/v2"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/audio"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/toast"
)

// Audio plays sound cues and follows configuration reloads.
type Audio interface {
	input.Sounds
	Configure(cfg *config.Config)
}

var _ Audio = (*audio.Manager)(nil)

// Options configures a Service.
type Options struct {
	Config  *config.Config
	Factory toast.SurfaceFactory
	Screens toast.Screens
	Driver  toast.Driver
	Audio   Audio // Optional

	// Events receives one formatted line per popup event. Nil discards them.
	Events io.Writer
	// Format formats events, JSON lines when nil.
	Format output.Formatter

	// Dispatch runs fn on the thread that owns the surfaces. Nil runs fn
	// on the calling goroutine.
	Dispatch func(fn func())

	Rand *mrand.Rand
}

// Service owns the registry of a running daemon.
type Service struct {
	mu       sync.Mutex
	cfg      *config.Config
	reg      *toast.Registry
	exec     *input.Executor
	notifier *InternalNotifier
	audio    Audio
	events   io.Writer
	format   output.Formatter
	dispatch func(fn func())
	onReload []func(*config.Config)
	logger   *slog.Logger
}

// New creates a service. The registry starts empty.
func New(opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	regOpts, err := toast.OptionsFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid display configuration: %w", err)
	}
	regOpts.Factory = opts.Factory
	regOpts.Screens = opts.Screens
	regOpts.Driver = opts.Driver
	regOpts.Rand = opts.Rand

	s := &Service{
		cfg:      cfg,
		reg:      toast.NewRegistry(regOpts, logger),
		audio:    opts.Audio,
		events:   opts.Events,
		format:   opts.Format,
		dispatch: opts.Dispatch,
		logger:   logger,
	}
	if s.events == nil {
		s.events = io.Discard
	}
	if s.format == nil {
		s.format = output.NewJSONFormatter(output.FormatterOptions{})
	}
	if s.dispatch == nil {
		s.dispatch = func(fn func()) { fn() }
	}

	s.exec = input.NewExecutor(s.reg, cfg, logger)
	if set, ok := opts.Screens.(*toast.ScreenSet); ok {
		s.exec.SetScreens(set)
	}
	if s.audio != nil {
		s.exec.SetSounds(s.audio)
	}
	s.exec.SetEventHandler(s.writeEvent)

	s.notifier = NewInternalNotifier(func(cmd input.Command) {
		s.dispatch(func() { s.execute(cmd) })
	}, logger)

	return s, nil
}

// Registry returns the popup registry.
func (s *Service) Registry() *toast.Registry {
	return s.reg
}

// Executor returns the command executor.
func (s *Service) Executor() *input.Executor {
	return s.exec
}

// Notifier returns the internal notifier.
func (s *Service) Notifier() *InternalNotifier {
	return s.notifier
}

// Config returns the configuration in effect.
func (s *Service) Config() *config.Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// OnReload registers fn to run after a new configuration is applied.
func (s *Service) OnReload(fn func(*config.Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// ApplyConfig switches to cfg. Call it on the dispatch thread. A config the
// registry cannot use is rejected and the previous one stays in effect.
func (s *Service) ApplyConfig(cfg *config.Config) error {
	regOpts, err := toast.OptionsFromConfig(cfg)
	if err != nil {
		s.logger.Warn("rejected configuration", "error", err)
		s.notifier.NotifyConfigError(err)
		return err
	}

	s.mu.Lock()
	s.cfg = cfg
	callbacks := append([]func(*config.Config){}, s.onReload...)
	s.mu.Unlock()

	s.exec.SetConfig(cfg)
	s.reg.Reconfigure(regOpts)
	if s.audio != nil {
		s.audio.Configure(cfg)
	}
	for _, fn := range callbacks {
		fn(cfg)
	}

	s.logger.Info("configuration applied", "corner", cfg.Display.Corner, "theme", cfg.Theme.Name)
	s.notifier.NotifyConfigReloaded()
	return nil
}

// Reload applies cfg on the dispatch thread. It is safe to call from a
// watcher goroutine.
func (s *Service) Reload(cfg *config.Config) {
	s.dispatch(func() { _ = s.ApplyConfig(cfg) })
}

// ConfigError reports a config file that failed to load.
func (s *Service) ConfigError(err error) {
	s.notifier.NotifyConfigError(err)
}

// Serve reads commands from r until EOF and runs each on the dispatch
// thread once its "at" offset from the start of Serve has passed.
// Malformed lines are logged and skipped.
func (s *Service) Serve(ctx context.Context, r io.Reader) error {
	reader := input.NewReader(r)
	start := time.Now()

	for {
		cmd, err := reader.Next()
		if errors.Is(err, io.EOF) {
			s.logger.Debug("command stream closed")
			return nil
		}
		var perr *input.ParseError
		if errors.As(err, &perr) {
			s.logger.Warn("skipping malformed command", "line", perr.Line, "error", perr.Err)
			continue
		}
		if err != nil {
			return err
		}

		if wait := cmd.At.Duration() - time.Since(start); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		s.dispatch(func() { s.execute(cmd) })
	}
}

func (s *Service) execute(cmd input.Command) {
	res, err := s.exec.Execute(cmd)
	switch {
	case err == nil:
		s.logger.Debug("command executed", "op", cmd.Op, "line", cmd.Line, "popup", res.ID)
	case errors.Is(err, toast.ErrShutdown):
		s.logger.Debug("command after shutdown", "op", cmd.Op, "line", cmd.Line)
	default:
		s.logger.Warn("command failed", "op", cmd.Op, "line", cmd.Line, "error", err)
	}
}

// writeEvent reports a popup event on the events writer.
func (s *Service) writeEvent(ev input.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.format.FormatEvent(s.events, ev); err != nil {
		s.logger.Warn("failed to write event", "event", ev.Type, "popup", ev.ID, "error", err)
	}
}

// Shutdown closes every popup and rejects further commands.
func (s *Service) Shutdown() {
	s.reg.Shutdown()
}
