package toast

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies a notification and selects its icon and sound cue.
type Kind int

const (
	KindPlain Kind = iota
	KindInformation
	KindWarning
	KindError
	KindConfirm
)

var kindNames = []string{"plain", "information", "warning", "error", "confirm"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "plain"
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. The empty string is KindPlain.
func ParseKind(s string) (Kind, error) {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "":
		return KindPlain, nil
	case "info":
		return KindInformation, nil
	}
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return KindPlain, fmt.Errorf("unknown kind %q", s)
}

// IconName returns the freedesktop icon name for the kind, or "" for plain.
func (k Kind) IconName() string {
	switch k {
	case KindInformation:
		return "dialog-information"
	case KindWarning:
		return "dialog-warning"
	case KindError:
		return "dialog-error"
	case KindConfirm:
		return "dialog-question"
	default:
		return ""
	}
}

// ScreenSelector picks the screen a popup is shown on.
// Non-negative values index the screen list and are clamped into range.
type ScreenSelector int

// ScreenUnderPointer selects the screen currently containing the pointer.
const ScreenUnderPointer ScreenSelector = -1

// ShakeRequest describes a shake applied right after a popup is shown.
type ShakeRequest struct {
	Duration  time.Duration
	Amplitude int
}

// Request describes a popup to show.
type Request struct {
	Title string
	Text  string
	Image string // Path to an image file, optional
	Kind  Kind
	Theme string // Theme name override, optional

	Corner    Corner
	Screen    ScreenSelector
	HideAfter time.Duration // Zero never hides; negative values are treated as zero

	HideCloseButton bool
	KeepOnClick     bool
	Shake           *ShakeRequest

	// OnClick runs after a body click, outside the registry lock.
	OnClick func(*Popup)
	// OnClose runs exactly once when the popup closes, outside the registry lock.
	OnClose func(*Popup)
}

// Content is the immutable visual part of a popup.
type Content struct {
	Title string
	Text  string
	Image string
	Kind  Kind
	Theme string
}

const (
	summaryLimit      = 108
	summaryImageLimit = 88
)

// Summary returns Text truncated for display: 108 runes, or 88 when an
// image takes part of the popup, with a trailing "..." when cut.
func (c Content) Summary() string {
	limit := summaryLimit
	if c.Image != "" {
		limit = summaryImageLimit
	}
	return Truncate(c.Text, limit)
}

// Truncate shortens s to at most limit runes followed by "...".
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
