// Package output formats popup snapshots and events for the command line.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/toast"
)

// Snapshot is the visible popup state at one simulation tick.
type Snapshot struct {
	Tick      int           `json:"tick" yaml:"tick"`
	Elapsed   time.Duration `json:"-" yaml:"-"`
	ElapsedMS int64         `json:"elapsed_ms" yaml:"elapsed_ms"`
	Popups    []toast.Frame `json:"popups" yaml:"popups"`
}

// NewSnapshot creates a snapshot of frames taken after elapsed time.
func NewSnapshot(tick int, elapsed time.Duration, frames []toast.Frame) Snapshot {
	if frames == nil {
		frames = []toast.Frame{}
	}
	return Snapshot{
		Tick:      tick,
		Elapsed:   elapsed,
		ElapsedMS: elapsed.Milliseconds(),
		Popups:    frames,
	}
}

// Formatter formats snapshots and popup events.
type Formatter interface {
	// Format writes one snapshot.
	Format(w io.Writer, s Snapshot) error
	// FormatEvent writes one popup event.
	FormatEvent(w io.Writer, ev input.Event) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
	FormatIDs   FormatType = "ids"
)

// ValidFormats returns every supported format.
func ValidFormats() []FormatType {
	return []FormatType{FormatJSON, FormatYAML, FormatPlain, FormatIDs}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range ValidFormats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q, must be one of: %v", s, ValidFormats())
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	default:
		return nil, fmt.Errorf("unknown format %q, must be one of: %v", format, ValidFormats())
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template string // Custom per-popup template for plain format
	ShowText bool   // Include the popup text in plain format
	Indent   bool   // Indent JSON instead of one object per line
}

// DefaultFormatterOptions returns the defaults for plain output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{ShowText: true}
}
