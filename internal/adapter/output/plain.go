package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/toast"
)

// PlainFormatter formats snapshots as indented text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	now      func() time.Time
}

// NewPlainFormatter creates a new plain text formatter. An invalid
// template is an error.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts, now: time.Now}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes a header line followed by one line per visible popup.
func (f *PlainFormatter) Format(w io.Writer, s Snapshot) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%d @ %s] %s\n", s.Tick, s.Elapsed, plural(len(s.Popups), "popup"))

	for _, p := range s.Popups {
		sb.WriteString("  ")
		if f.template != nil {
			if err := f.template.Execute(&sb, p); err != nil {
				return fmt.Errorf("failed to render popup %s: %w", p.ID, err)
			}
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(f.formatFrame(p))
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// formatFrame renders one popup as
// screen/corner#index (x,y) wxh state [progress] "title": text
func (f *PlainFormatter) formatFrame(p toast.Frame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s/%s#%d (%d,%d) %dx%d %s", p.Screen, p.Corner, p.Index, p.X, p.Y, p.Width, p.Height, p.State)
	if p.Countdown {
		fmt.Fprintf(&sb, " [%s]", progressBar(p.Progress, p.Width, 10))
	}
	if p.CloseHover {
		sb.WriteString(" hover")
	}
	fmt.Fprintf(&sb, " %q", p.Title)
	if f.opts.ShowText && p.Text != "" {
		sb.WriteString(": " + sanitizeText(p.Text))
	}
	return sb.String()
}

// FormatEvent writes the event with a relative timestamp.
func (f *PlainFormatter) FormatEvent(w io.Writer, ev input.Event) error {
	_, err := fmt.Fprintf(w, "%s %s %q (%s)\n", ev.Type, ev.ID, ev.Title, humanize.RelTime(ev.Time, f.now(), "ago", "from now"))
	return err
}

// progressBar draws progress out of total as a bar of width cells.
func progressBar(progress, total, width int) string {
	filled := 0
	if total > 0 {
		filled = min(width, max(0, progress*width/total))
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": toast.Truncate,
		"bar": func(p toast.Frame, width int) string {
			return progressBar(p.Progress, p.Width, width)
		},
		"clean": sanitizeText,
	}
}

// sanitizeText cleans up popup text for single-line display.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.Join(strings.Fields(text), " ")
}
