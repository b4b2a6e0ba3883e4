// Package core runs deterministic popup simulations without a display.
package core

import (
	"cmp"
	"log/slog"
	mrand "math/rand/v2"
	"slices"
	"time"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/frame"
	"github.com/jmylchreest/toasty/internal/headless"
	"github.com/jmylchreest/toasty/internal/toast"
)

// maxSettleTime bounds a simulation that runs until every popup is closed.
const maxSettleTime = 10 * time.Minute

// epoch is the wall-clock time of simulated elapsed zero.
var epoch = time.Unix(0, 0).UTC()

// SimulationOptions configures a Simulation.
type SimulationOptions struct {
	Config  *config.Config
	FPS     int            // Frames per simulated second, 60 when zero
	Frames  int            // Frames to run; 0 runs until the script is done and no popups remain
	Every   int            // Snapshot every Nth frame, 1 when zero
	Screens []toast.Screen // One 1920x1080 screen when empty
	Sounds  input.Sounds   // Optional
	Seed    uint64         // Shake randomness
}

// Simulation replays timed commands against a headless registry, stepping
// a manual driver at a fixed frame interval.
type Simulation struct {
	opts    SimulationOptions
	reg     *toast.Registry
	host    *headless.Host
	driver  *frame.Manual
	screens *toast.ScreenSet
	exec    *input.Executor
	cmds    []input.Command
	next    int
	dt      time.Duration
	events  []input.Event
	logger  *slog.Logger
}

// NewSimulation prepares a simulation of cmds. Commands run in order of
// their "at" offsets; ties keep script order.
func NewSimulation(cmds []input.Command, opts SimulationOptions, logger *slog.Logger) (*Simulation, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.FPS <= 0 {
		opts.FPS = 60
	}
	if opts.Every <= 0 {
		opts.Every = 1
	}
	if len(opts.Screens) == 0 {
		opts.Screens = []toast.Screen{{ID: "0", Bounds: toast.Rect{Width: 1920, Height: 1080}}}
	}

	s := &Simulation{
		opts:    opts,
		host:    headless.NewHost(),
		driver:  frame.NewManual(),
		screens: toast.NewScreenSet(opts.Screens...),
		cmds:    slices.Clone(cmds),
		dt:      time.Second / time.Duration(opts.FPS),
		logger:  logger,
	}
	slices.SortStableFunc(s.cmds, func(a, b input.Command) int {
		return cmp.Compare(a.At, b.At)
	})

	regOpts, err := toast.OptionsFromConfig(opts.Config)
	if err != nil {
		return nil, err
	}
	regOpts.Factory = s.host
	regOpts.Screens = s.screens
	regOpts.Driver = s.driver
	regOpts.Rand = mrand.New(mrand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	s.reg = toast.NewRegistry(regOpts, logger)

	s.exec = input.NewExecutor(s.reg, opts.Config, logger)
	s.exec.SetScreens(s.screens)
	s.exec.SetClock(func() time.Time { return epoch.Add(s.driver.Elapsed()) })
	s.exec.SetEventHandler(func(ev input.Event) { s.events = append(s.events, ev) })
	if opts.Sounds != nil {
		s.exec.SetSounds(opts.Sounds)
	}

	return s, nil
}

// Registry returns the simulated registry.
func (s *Simulation) Registry() *toast.Registry {
	return s.reg
}

// Host returns the headless surface host.
func (s *Simulation) Host() *headless.Host {
	return s.host
}

// Elapsed returns the simulated time.
func (s *Simulation) Elapsed() time.Duration {
	return s.driver.Elapsed()
}

// Run steps the simulation. Before every frame step it runs the commands
// that are due, reports new events to onEvent and, every Nth frame, passes
// a snapshot to emit. Either callback may be nil. A callback error stops
// the run.
func (s *Simulation) Run(emit func(output.Snapshot) error, onEvent func(input.Event) error) error {
	limit := s.opts.Frames
	settle := limit <= 0
	if settle {
		limit = int(maxSettleTime / s.dt)
	}

	for tick := 0; ; tick++ {
		elapsed := s.driver.Elapsed()
		s.applyDue(elapsed)

		for _, ev := range s.takeEvents() {
			if onEvent == nil {
				continue
			}
			if err := onEvent(ev); err != nil {
				return err
			}
		}

		if emit != nil && tick%s.opts.Every == 0 {
			if err := emit(output.NewSnapshot(tick, elapsed, s.reg.Snapshot())); err != nil {
				return err
			}
		}

		if settle && s.next == len(s.cmds) && s.reg.Len() == 0 {
			return nil
		}
		if tick >= limit {
			if settle {
				s.logger.Warn("simulation stopped before every popup closed",
					"elapsed", elapsed, "popups", s.reg.Len())
			}
			return nil
		}
		s.driver.Step(s.dt)
	}
}

// applyDue runs every command whose offset has been reached. Failed
// commands are logged and skipped.
func (s *Simulation) applyDue(elapsed time.Duration) {
	for s.next < len(s.cmds) && s.cmds[s.next].At.Duration() <= elapsed {
		cmd := s.cmds[s.next]
		s.next++
		if _, err := s.exec.Execute(cmd); err != nil {
			s.logger.Warn("command failed", "op", cmd.Op, "line", cmd.Line, "error", err)
		}
	}
}

func (s *Simulation) takeEvents() []input.Event {
	events := s.events
	s.events = nil
	return events
}

// Close releases every popup.
func (s *Simulation) Close() {
	s.reg.Shutdown()
}
