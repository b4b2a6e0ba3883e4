package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownTheme is returned when a theme name matches neither a user
// theme file nor a built-in theme.
var ErrUnknownTheme = errors.New("unknown theme")

// Color is an opaque RGB colour.
type Color struct {
	R, G, B uint8
}

// ParseColor parses "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return Color{}, fmt.Errorf("invalid colour %q: must be #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// String returns the colour as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Darker returns the colour scaled towards black by 30%.
func (c Color) Darker() Color {
	scale := func(v uint8) uint8 { return uint8(float64(v) * 0.7) }
	return Color{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

var (
	white     = Color{0xff, 0xff, 0xff}
	lightGray = Color{0xc0, 0xc0, 0xc0}
	gray      = Color{0x80, 0x80, 0x80}
	darkGray  = Color{0x40, 0x40, 0x40}
	red       = Color{0xff, 0x00, 0x00}
	blue      = Color{0x42, 0xa5, 0xf5}
)

// Theme is a popup colour palette.
type Theme struct {
	Name       string `toml:"name"`
	Base       string `toml:"base"` // Built-in palette a theme file starts from
	Panel      Color  `toml:"panel"`
	Title      Color  `toml:"title"`
	Text       Color  `toml:"text"`
	Close      Color  `toml:"close"`
	CloseHover Color  `toml:"close_hover"`
	Progress   Color  `toml:"progress"`
	CSSFile    string `toml:"css"` // Extra CSS for the GTK host, relative to the theme file

	Path     string    `toml:"-"` // Empty for built-in themes
	ModTime  time.Time `toml:"-"`
	ExtraCSS string    `toml:"-"` // CSSFile contents with imports inlined
}

// Light returns the built-in light theme.
func Light() *Theme {
	return &Theme{
		Name:       "light",
		Base:       "light",
		Panel:      white,
		Title:      gray.Darker(),
		Text:       gray,
		Close:      lightGray,
		CloseHover: red,
		Progress:   blue,
	}
}

// Dark returns the built-in dark theme.
func Dark() *Theme {
	return &Theme{
		Name:       "dark",
		Base:       "dark",
		Panel:      darkGray,
		Title:      gray,
		Text:       lightGray,
		Close:      gray,
		CloseHover: red,
		Progress:   gray,
	}
}

// Builtin returns a fresh copy of the named built-in theme.
func Builtin(name string) (*Theme, bool) {
	switch name {
	case "light":
		return Light(), true
	case "dark":
		return Dark(), true
	default:
		return nil, false
	}
}

// BuiltinNames lists the built-in theme names.
func BuiltinNames() []string {
	return []string{"light", "dark"}
}

// IsBuiltin reports whether the theme ships with toasty.
func (t *Theme) IsBuiltin() bool {
	return t.Path == ""
}

// EffectiveName applies the colour scheme preference to a theme name.
// A forced "light" or "dark" scheme, or "system" with a known system
// preference, swaps between the built-in themes. Custom themes are kept.
func EffectiveName(name, scheme string, systemDark bool) string {
	if name == "" {
		name = "light"
	}
	if _, ok := Builtin(name); !ok {
		return name
	}
	switch scheme {
	case "light", "dark":
		return scheme
	case "system":
		if systemDark {
			return "dark"
		}
		return "light"
	default:
		return name
	}
}

// Load reads a theme file. Colours the file leaves out come from its base
// palette, "light" unless the file sets base = "dark".
func Load(path string) (*Theme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var header struct {
		Base string `toml:"base"`
	}
	if err := toml.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", path, err)
	}
	if header.Base == "" {
		header.Base = "light"
	}
	t, ok := Builtin(header.Base)
	if !ok {
		return nil, fmt.Errorf("theme %s: base must be one of %v, got %q", path, BuiltinNames(), header.Base)
	}

	t.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := toml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", path, err)
	}
	t.Path = path
	t.ModTime = info.ModTime()

	if t.CSSFile != "" {
		cssPath := t.CSSFile
		if !filepath.IsAbs(cssPath) {
			cssPath = filepath.Join(filepath.Dir(path), cssPath)
		}
		css, err := os.ReadFile(cssPath)
		if err != nil {
			return nil, fmt.Errorf("theme %s: failed to read css: %w", path, err)
		}
		t.ExtraCSS = ProcessImports(string(css), filepath.Dir(cssPath), nil)
	}

	return t, nil
}

// Resolve finds a theme by name.
// Resolution order:
//  1. User themes directory (<themesDir>/<name>.toml)
//  2. Built-in themes
//
// A user file named after a built-in theme overrides it.
func Resolve(name, themesDir string) (*Theme, error) {
	if name == "" {
		name = "light"
	}

	if themesDir != "" {
		path := filepath.Join(themesDir, name+".toml")
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if t, ok := Builtin(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
}

// Reload re-reads a theme file. Returns true if anything changed.
func (t *Theme) Reload() (bool, error) {
	if t.IsBuiltin() {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, err
	}
	if !info.ModTime().After(t.ModTime) {
		return false, nil
	}

	fresh, err := Load(t.Path)
	if err != nil {
		return false, err
	}
	changed := fresh.Stylesheet() != t.Stylesheet()
	*t = *fresh
	return changed, nil
}

// Info describes an available theme.
type Info struct {
	Name      string
	Path      string
	IsBuiltin bool
}

// ListAvailable lists built-in themes followed by user themes in themesDir.
func ListAvailable(themesDir string) ([]Info, error) {
	seen := make(map[string]bool)
	var themes []Info

	for _, name := range BuiltinNames() {
		seen[name] = true
		themes = append(themes, Info{Name: name, IsBuiltin: true})
	}

	if themesDir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, err
	}

	var user []Info
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".toml")
		if seen[name] {
			continue
		}
		seen[name] = true
		user = append(user, Info{Name: name, Path: filepath.Join(themesDir, entry.Name())})
	}
	sort.Slice(user, func(i, j int) bool { return user[i].Name < user[j].Name })

	return append(themes, user...), nil
}
