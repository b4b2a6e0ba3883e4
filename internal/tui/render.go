package tui

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/theme"
	"github.com/jmylchreest/toasty/internal/toast"
)

// themeCache resolves popup themes once per name.
type themeCache struct {
	dir    string
	def    *theme.Theme
	named  map[string]*theme.Theme
	logger *slog.Logger
}

func newThemeCache(cfg *config.Config, dir string, logger *slog.Logger) *themeCache {
	dark := false
	if cfg.Theme.ColorScheme == string(config.ColorSchemeSystem) {
		dark = lipgloss.HasDarkBackground()
	}
	name := theme.EffectiveName(cfg.Theme.Name, cfg.Theme.ColorScheme, dark)

	c := &themeCache{dir: dir, named: make(map[string]*theme.Theme), logger: logger}
	def, err := theme.Resolve(name, dir)
	if err != nil {
		logger.Warn("failed to load theme, using light", "theme", name, "error", err)
		def = theme.Light()
	}
	c.def = def
	return c
}

// get returns the named theme, or the default for "" and unknown names.
func (c *themeCache) get(name string) *theme.Theme {
	if name == "" {
		return c.def
	}
	if t, ok := c.named[name]; ok {
		return t
	}
	t, err := theme.Resolve(name, c.dir)
	if err != nil {
		c.logger.Warn("unknown popup theme, using default", "theme", name, "error", err)
		t = c.def
	}
	c.named[name] = t
	return t
}

func color(c theme.Color) lipgloss.Color {
	return lipgloss.Color(c.String())
}

// kindIcons are single-cell stand-ins for the freedesktop dialog icons.
var kindIcons = map[toast.Kind]string{
	toast.KindInformation: "i",
	toast.KindWarning:     "!",
	toast.KindError:       "x",
	toast.KindConfirm:     "?",
}

// segment is one rendered popup line placed at a column.
type segment struct {
	col   int
	width int
	text  string
}

// renderDesktop draws the visible popups onto a cols x rows canvas.
// Popup lines that overlap an earlier popup or leave the canvas are clipped.
func (m Model) renderDesktop(cols, rows int) string {
	if rows <= 0 {
		return ""
	}

	frames := m.host.visible()
	slices.SortFunc(frames, func(a, b toast.Frame) int {
		return strings.Compare(a.ID, b.ID)
	})

	canvas := make([][]segment, rows)
	for _, f := range frames {
		col := floorDiv(f.X, cellWidth)
		row := floorDiv(f.Y, cellHeight)
		lines := renderPopup(f, m.themes.get(f.Theme))
		for i, line := range lines {
			r := row + i
			if r < 0 || r >= rows {
				continue
			}
			canvas[r] = append(canvas[r], segment{col: col, width: lipgloss.Width(line), text: line})
		}
	}

	out := make([]string, rows)
	for r, segs := range canvas {
		slices.SortStableFunc(segs, func(a, b segment) int { return a.col - b.col })
		var sb strings.Builder
		cursor := 0
		for _, s := range segs {
			if s.col < cursor || s.col+s.width > cols {
				continue
			}
			sb.WriteString(strings.Repeat(" ", s.col-cursor))
			sb.WriteString(s.text)
			cursor = s.col + s.width
		}
		out[r] = sb.String()
	}
	return strings.Join(out, "\n")
}

// renderPopup renders a frame as lines of exactly Width/cellWidth cells:
// a title row with the close button, text rows and a progress row.
func renderPopup(f toast.Frame, th *theme.Theme) []string {
	w := max(8, f.Width/cellWidth)
	h := max(2, f.Height/cellHeight)

	base := lipgloss.NewStyle().Background(color(th.Panel))
	title := base.Foreground(color(th.Title)).Bold(true)
	text := base.Foreground(color(th.Text))
	icon := base.Foreground(color(th.Progress)).Bold(true)

	closeStyle := base.Foreground(color(th.Close))
	if f.CloseHover {
		closeStyle = base.Foreground(color(th.CloseHover)).Bold(true)
	}
	closeBtn := closeStyle.Render("×")
	if f.HideCloseButton {
		closeBtn = base.Render(" ")
	}

	glyph := kindIcons[f.Kind]
	if glyph == "" {
		glyph = " "
	}

	lines := make([]string, 0, h)
	lines = append(lines, base.Render(" ")+icon.Render(glyph)+base.Render(" ")+
		title.Render(fit(f.Title, w-6))+base.Render(" ")+closeBtn+base.Render(" "))

	body := wrap(f.Text, w-2)
	for i := range h - 2 {
		line := ""
		if i < len(body) {
			line = body[i]
		}
		lines = append(lines, base.Render(" ")+text.Render(fit(line, w-2))+base.Render(" "))
	}

	bar := base.Render(strings.Repeat(" ", w))
	if f.Countdown && f.Width > 0 {
		filled := min(w, max(0, f.Progress*w/f.Width))
		bar = base.Foreground(color(th.Progress)).Render(strings.Repeat("━", filled)) +
			base.Foreground(color(th.Close)).Render(strings.Repeat("─", w-filled))
	}
	lines = append(lines, bar)
	return lines
}

// fit pads or truncates s to exactly n cells.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if lipgloss.Width(s) <= n {
		return s + strings.Repeat(" ", n-lipgloss.Width(s))
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	out := string(runes) + "…"
	return out + strings.Repeat(" ", n-lipgloss.Width(out))
}

// wrap splits s into lines of at most n cells, breaking on spaces.
func wrap(s string, n int) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case lipgloss.Width(line)+1+lipgloss.Width(word) <= n:
			line += " " + word
		default:
			lines = append(lines, line)
			line = word
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
