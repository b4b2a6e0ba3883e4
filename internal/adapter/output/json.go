package output

import (
	"encoding/json"
	"io"

	"github.com/jmylchreest/toasty/internal/adapter/input"
)

// JSONFormatter writes snapshots as JSON, one object per line unless indented.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

func (f *JSONFormatter) encoder(w io.Writer) *json.Encoder {
	encoder := json.NewEncoder(w)
	if f.opts.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder
}

// Format writes a snapshot as JSON.
func (f *JSONFormatter) Format(w io.Writer, s Snapshot) error {
	return f.encoder(w).Encode(s)
}

// FormatEvent writes an event as JSON.
func (f *JSONFormatter) FormatEvent(w io.Writer, ev input.Event) error {
	return f.encoder(w).Encode(ev)
}
