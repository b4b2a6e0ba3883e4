// Package input reads popup commands from JSON lines and applies them to a
// toast registry.
//
// One command per line:
//
//	{"op":"show","title":"Build","text":"done","kind":"information","hide_after":"5s"}
//	{"op":"shake","index":0,"duration":"500ms","amplitude":10}
//	{"op":"close","id":"01J..."}
//	{"op":"close-all"}
//	{"op":"geometry","screen_id":"0","bounds":{"x":0,"y":0,"width":1280,"height":720}}
//	{"op":"click","index":0,"x":150,"y":40}
//
// Blank lines and lines starting with # are ignored. "at" schedules a
// command relative to the start of a simulation.
package input

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jmylchreest/toasty/internal/toast"
)

// Op is a command verb.
type Op string

const (
	OpShow     Op = "show"
	OpClose    Op = "close"
	OpShake    Op = "shake"
	OpCloseAll Op = "close-all"
	OpGeometry Op = "geometry"
	OpClick    Op = "click"
)

// ValidOps returns every known op.
func ValidOps() []Op {
	return []Op{OpShow, OpClose, OpShake, OpCloseAll, OpGeometry, OpClick}
}

// Duration is a time.Duration read from JSON as "500ms", "5s", or integer milliseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	if ms, err := strconv.ParseInt(string(data), 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid duration %s: must be like \"500ms\", \"5s\" or milliseconds", data)
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ShakeSpec is a shake applied with a show command.
type ShakeSpec struct {
	Duration  Duration `json:"duration,omitempty"`
	Amplitude int      `json:"amplitude,omitempty"`
}

// Command is one input line.
type Command struct {
	Op Op       `json:"op"`
	At Duration `json:"at,omitempty"`

	// Target of close, shake and click: an id, or the index in show order.
	ID    string `json:"id,omitempty"`
	Index *int   `json:"index,omitempty"`

	// show
	Title           string     `json:"title,omitempty"`
	Text            string     `json:"text,omitempty"`
	Image           string     `json:"image,omitempty"`
	Kind            string     `json:"kind,omitempty"`
	Theme           string     `json:"theme,omitempty"`
	Corner          string     `json:"corner,omitempty"`
	Screen          *int       `json:"screen,omitempty"`
	HideAfter       *Duration  `json:"hide_after,omitempty"`
	HideCloseButton *bool      `json:"hide_close_button,omitempty"`
	KeepOnClick     *bool      `json:"keep_on_click,omitempty"`
	Shake           *ShakeSpec `json:"shake,omitempty"`

	// shake
	Duration  Duration `json:"duration,omitempty"`
	Amplitude int      `json:"amplitude,omitempty"`

	// geometry
	ScreenID string      `json:"screen_id,omitempty"`
	Bounds   *toast.Rect `json:"bounds,omitempty"`

	// click, popup-local
	X int `json:"x,omitempty"`
	Y int `json:"y,omitempty"`

	// Line is the 1-based input line the command was read from.
	Line int `json:"-"`
}

// Validate checks that the command carries what its op needs.
func (c *Command) Validate() error {
	switch c.Op {
	case OpShow:
		if c.Title == "" && c.Text == "" {
			return errors.New("show needs a title or text")
		}
		if c.Corner != "" {
			if _, err := toast.ParseCorner(c.Corner); err != nil {
				return err
			}
		}
		if _, err := toast.ParseKind(c.Kind); err != nil {
			return err
		}
	case OpClose, OpShake, OpClick:
		if c.ID == "" && c.Index == nil {
			return fmt.Errorf("%s needs an id or index", c.Op)
		}
	case OpGeometry:
		if c.ScreenID == "" || c.Bounds == nil {
			return errors.New("geometry needs screen_id and bounds")
		}
		if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
			return errors.New("geometry bounds must have a positive size")
		}
	case OpCloseAll:
	default:
		return fmt.Errorf("unknown op %q, must be one of: %v", c.Op, ValidOps())
	}
	if c.At < 0 {
		return errors.New("at must not be negative")
	}
	return nil
}

// ParseError reports a malformed input line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Reader reads commands from JSON lines.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader over r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxSize)
	return &Reader{scanner: scanner}
}

// Next returns the next command, or io.EOF after the last one.
// A malformed line returns a *ParseError; reading may continue after it.
func (r *Reader) Next() (Command, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 || data[0] == '#' {
			continue
		}

		var cmd Command
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cmd); err != nil {
			return Command{}, &ParseError{Line: r.line, Err: err}
		}
		if err := cmd.Validate(); err != nil {
			return Command{}, &ParseError{Line: r.line, Err: err}
		}
		cmd.Line = r.line
		return cmd, nil
	}

	if err := r.scanner.Err(); err != nil {
		return Command{}, fmt.Errorf("failed to read commands: %w", err)
	}
	return Command{}, io.EOF
}

// ReadAll reads every command, stopping at the first malformed line.
func ReadAll(r io.Reader) ([]Command, error) {
	reader := NewReader(r)
	var cmds []Command
	for {
		cmd, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return cmds, nil
		}
		if err != nil {
			return cmds, err
		}
		cmds = append(cmds, cmd)
	}
}
