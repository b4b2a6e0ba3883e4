package output

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toasty/internal/adapter/input"
)

// YAMLFormatter writes each snapshot as a separate YAML document.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) document(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	if _, err := io.WriteString(w, "---\n"); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Format writes a snapshot as a YAML document.
func (f *YAMLFormatter) Format(w io.Writer, s Snapshot) error {
	return f.document(w, s)
}

// FormatEvent writes an event as a YAML document.
func (f *YAMLFormatter) FormatEvent(w io.Writer, ev input.Event) error {
	return f.document(w, ev)
}
