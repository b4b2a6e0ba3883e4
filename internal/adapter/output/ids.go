package output

import (
	"fmt"
	"io"

	"github.com/jmylchreest/toasty/internal/adapter/input"
)

// IDsFormatter outputs just popup IDs, one per line.
// Useful for piping to close or shake commands.
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// Format writes the IDs of the visible popups.
func (f *IDsFormatter) Format(w io.Writer, s Snapshot) error {
	for _, p := range s.Popups {
		if _, err := fmt.Fprintln(w, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatEvent writes the event's popup ID.
func (f *IDsFormatter) FormatEvent(w io.Writer, ev input.Event) error {
	_, err := fmt.Fprintln(w, ev.ID)
	return err
}
