// Package tui provides a BubbleTea terminal desktop that hosts toast popups.
//
// The terminal is one screen. Each cell covers 10x20 virtual pixels, so
// popups keep their configured pixel geometry and stack exactly as they do
// on a real display.
package tui

import (
	"fmt"
	"log/slog"
	mrand "math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/adapter/output"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/toast"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeDesktop Mode = iota
	ModeHelp
)

// demoKinds is the order the new-toast key cycles through.
var demoKinds = []toast.Kind{
	toast.KindPlain,
	toast.KindInformation,
	toast.KindWarning,
	toast.KindError,
	toast.KindConfirm,
}

var demoText = map[toast.Kind]string{
	toast.KindPlain:       "Something happened somewhere.",
	toast.KindInformation: "The build finished in 42 seconds with no warnings.",
	toast.KindWarning:     "Disk usage is above 90% on /home.",
	toast.KindError:       "Failed to reach the update server: connection refused.",
	toast.KindConfirm:     "Click to apply the pending changes.",
}

// Options configures the TUI.
type Options struct {
	Config    *config.Config
	ThemesDir string
	Sounds    input.Sounds // Optional sound cues
	Rand      *mrand.Rand  // Shake randomness, random when nil
	Logger    *slog.Logger
}

// Model is the main TUI model.
type Model struct {
	cfg    *config.Config
	logger *slog.Logger

	reg     *toast.Registry
	host    *cellHost
	driver  *teaDriver
	screens *toast.ScreenSet
	exec    *input.Executor
	events  *eventLog
	themes  *themeCache
	format  *output.PlainFormatter

	// Components
	help help.Model
	keys KeyMap

	// State
	mode    Mode
	width   int
	height  int
	ready   bool
	corner  toast.Corner
	kind    int    // Index into demoKinds for the next new toast
	count   int    // Toasts created so far
	hovered string // Popup under the mouse

	// Status message
	statusMsg string
	statusErr bool
}

// eventLog collects popup events raised during one update.
type eventLog struct {
	pending []input.Event
}

func (l *eventLog) add(ev input.Event) {
	l.pending = append(l.pending, ev)
}

func (l *eventLog) take() []input.Event {
	events := l.pending
	l.pending = nil
	return events
}

// New creates a new TUI model.
func New(opts Options) (Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	regOpts, err := toast.OptionsFromConfig(cfg)
	if err != nil {
		return Model{}, err
	}
	host := newCellHost()
	driver := newTeaDriver(cfg.FrameInterval())
	screens := toast.NewScreenSet(toast.Screen{ID: screenID, Bounds: screenBounds(80, 23)})
	regOpts.Factory = host
	regOpts.Screens = screens
	regOpts.Driver = driver
	regOpts.Rand = opts.Rand

	reg := toast.NewRegistry(regOpts, logger)

	events := &eventLog{}
	exec := input.NewExecutor(reg, cfg, logger)
	exec.SetScreens(screens)
	exec.SetEventHandler(events.add)
	if opts.Sounds != nil {
		exec.SetSounds(opts.Sounds)
	}

	format, err := output.NewPlainFormatter(output.FormatterOptions{})
	if err != nil {
		return Model{}, err
	}

	h := help.New()
	h.ShowAll = true

	return Model{
		cfg:     cfg,
		logger:  logger,
		reg:     reg,
		host:    host,
		driver:  driver,
		screens: screens,
		exec:    exec,
		events:  events,
		themes:  newThemeCache(cfg, opts.ThemesDir, logger),
		format:  format,
		help:    h,
		keys:    DefaultKeyMap(),
		mode:    ModeDesktop,
		corner:  regOpts.Corner,
	}, nil
}

// Registry returns the registry owning the popups.
func (m Model) Registry() *toast.Registry {
	return m.reg
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return nil
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct {
	text string
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		return next, tea.Batch(cmd, next.flushEvents(), next.driver.schedule())

	case tea.MouseMsg:
		m = m.handleMouse(msg)
		return m, tea.Batch(m.flushEvents(), m.driver.schedule())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width

		// The last row is the status bar.
		_, err := m.exec.Execute(input.Command{
			Op:       input.OpGeometry,
			ScreenID: screenID,
			Bounds:   ptr(screenBounds(msg.Width, msg.Height-1)),
		})
		if err != nil {
			m.logger.Warn("failed to apply terminal size", "error", err)
		}
		return m, nil

	case frameMsg:
		cmd := m.driver.frame(time.Time(msg))
		return m, tea.Batch(cmd, m.flushEvents())

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(t time.Time) tea.Msg {
			return clearStatusMsg{text: msg.text}
		})

	case clearStatusMsg:
		// A newer message replaced this one.
		if msg.text == m.statusMsg {
			m.statusMsg = ""
			m.statusErr = false
		}
		return m, nil
	}

	return m, nil
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeDesktop
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if msg.Type == tea.KeyEsc {
			m.mode = ModeDesktop
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.New):
		return m.showDemo(false)

	case key.Matches(msg, m.keys.Timed):
		return m.showDemo(true)

	case key.Matches(msg, m.keys.Shake):
		n := m.reg.Len()
		if n == 0 {
			return m, status("No popups to shake", false)
		}
		return m, m.execute(input.Command{Op: input.OpShake, Index: ptr(n - 1)})

	case key.Matches(msg, m.keys.Close):
		if m.reg.Len() == 0 {
			return m, status("No popups to close", false)
		}
		return m, m.execute(input.Command{Op: input.OpClose, Index: ptr(0)})

	case key.Matches(msg, m.keys.CloseAll):
		return m, m.execute(input.Command{Op: input.OpCloseAll})

	case key.Matches(msg, m.keys.Corner):
		corners := toast.Corners()
		for i, c := range corners {
			if c == m.corner {
				m.corner = corners[(i+1)%len(corners)]
				break
			}
		}
		return m, status("New toasts appear at "+m.corner.String(), false)
	}

	return m, nil
}

// showDemo shows the next demo toast. Timed toasts use the configured
// countdown, others stay until closed.
func (m Model) showDemo(timed bool) (Model, tea.Cmd) {
	kind := demoKinds[m.kind%len(demoKinds)]
	m.kind++
	m.count++

	cmd := input.Command{
		Op:     input.OpShow,
		Title:  fmt.Sprintf("Toast #%d (%s)", m.count, kind),
		Text:   demoText[kind],
		Kind:   kind.String(),
		Corner: m.corner.String(),
	}
	if !timed {
		cmd.HideAfter = ptr(input.Duration(0))
	}
	return m, m.execute(cmd)
}

// execute runs a command and turns a failure into a status message.
func (m Model) execute(cmd input.Command) tea.Cmd {
	if _, err := m.exec.Execute(cmd); err != nil {
		return status(fmt.Sprintf("%s failed: %v", cmd.Op, err), true)
	}
	return nil
}

// handleMouse routes releases to Click and motion to Pointer/Leave.
func (m Model) handleMouse(msg tea.MouseMsg) Model {
	px, py := cellToPixel(msg.X, msg.Y)
	hit, ok := m.hitTest(px, py)

	switch msg.Action {
	case tea.MouseActionRelease:
		if ok {
			if err := m.reg.Click(hit.ID, px-hit.X, py-hit.Y); err != nil {
				m.logger.Debug("click on closed popup", "popup", hit.ID, "error", err)
			}
		}

	case tea.MouseActionMotion:
		if m.hovered != "" && (!ok || hit.ID != m.hovered) {
			_ = m.reg.Leave(m.hovered)
			m.hovered = ""
		}
		if ok {
			m.hovered = hit.ID
			if err := m.reg.Pointer(hit.ID, px-hit.X, py-hit.Y); err != nil {
				m.logger.Debug("pointer on closed popup", "popup", hit.ID, "error", err)
			}
		}
	}
	return m
}

// hitTest returns the topmost popup containing virtual pixel (x, y).
func (m Model) hitTest(x, y int) (toast.Frame, bool) {
	frames := m.reg.Snapshot()
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		r := toast.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
		if r.Contains(x, y) {
			return f, true
		}
	}
	return toast.Frame{}, false
}

// flushEvents reports the newest popup event in the status bar.
func (m Model) flushEvents() tea.Cmd {
	events := m.events.take()
	if len(events) == 0 {
		return nil
	}
	var sb strings.Builder
	if err := m.format.FormatEvent(&sb, events[len(events)-1]); err != nil {
		return nil
	}
	return status(strings.TrimSpace(sb.String()), false)
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.mode == ModeHelp {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)
		return titleStyle.Render("Keyboard Shortcuts") + "\n" + m.help.View(m.keys) + "\n\n" +
			lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("Press ? or esc to return")
	}

	desktop := m.renderDesktop(m.width, m.height-1)

	var bar string
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		bar = statusStyle.Render(m.statusMsg)
	} else {
		bar = m.buildKeybindBar(m.width)
	}
	return desktop + "\n" + bar
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	binds := []keybind{
		{"q", "quit", 1},
		{"n", "new", 2},
		{"t", "timed", 3},
		{"?", "help", 4},
		{"s", "shake", 5},
		{"x", "close", 6},
		{"c", m.corner.String(), 7},
		{"X", "close all", 8},
	}

	// Build the bar, adding keybinds until we run out of space
	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(result) + len(b.key) + 1 + lipgloss.Width(b.desc)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// RunOptions configures Run.
type RunOptions struct {
	Options
	// AltScreen runs full screen. Disabled in tests.
	AltScreen bool
}

// Run starts the TUI and blocks until it quits. Every popup is closed on exit.
func Run(opts RunOptions) error {
	m, err := New(opts.Options)
	if err != nil {
		return err
	}

	progOpts := []tea.ProgramOption{tea.WithMouseAllMotion()}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	p := tea.NewProgram(m, progOpts...)

	_, err = p.Run()
	m.reg.Shutdown()
	return err
}

func ptr[T any](v T) *T {
	return &v
}
