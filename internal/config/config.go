// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "5s", "1m", or integer milliseconds.
// A value of "0" or 0 means never.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	// Integer milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '5s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Config is the toasty configuration.
// Loaded from ~/.config/toasty/toasty.toml
type Config struct {
	Display  DisplayConfig  `toml:"display"`
	Timeouts TimeoutConfig  `toml:"timeouts"`
	Behavior BehaviorConfig `toml:"behavior"`
	Shake    ShakeConfig    `toml:"shake"`
	Theme    ThemeConfig    `toml:"theme"`
	Audio    AudioConfig    `toml:"audio"`
}

// DisplayConfig contains placement and animation settings.
type DisplayConfig struct {
	Corner       string   `toml:"corner"`        // "top-right", "bottom-left", "center", etc.
	Monitor      int      `toml:"monitor"`       // 0-indexed, -1 = monitor under the pointer
	Width        int      `toml:"width"`         // Popup width in pixels
	Height       int      `toml:"height"`        // Popup height in pixels
	Padding      int      `toml:"padding"`       // Distance from the screen edge
	Gap          int      `toml:"gap"`           // Gap between stacked popups
	CloseRegion  int      `toml:"close_region"`  // Size of the close-button hit square
	MoveDuration Duration `toml:"move_duration"` // Reflow animation length
	MoveEasing   string   `toml:"move_easing"`   // Easing name, see anim.EaseNames
	FrameRate    int      `toml:"frame_rate"`    // Animation ticks per second
}

// TimeoutConfig contains auto-hide settings.
type TimeoutConfig struct {
	HideAfter Duration `toml:"hide_after"` // e.g. "5s"; "0" never hides
}

// BehaviorConfig contains interaction defaults.
type BehaviorConfig struct {
	KeepOnClick     bool `toml:"keep_on_click"`     // Body clicks do not close the popup
	HideCloseButton bool `toml:"hide_close_button"` // No close button hit region
}

// ShakeConfig contains defaults for shake requests.
type ShakeConfig struct {
	Duration  Duration `toml:"duration"`
	Amplitude int      `toml:"amplitude"` // 4 is a little, 10 is a lot
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // "light", "dark", or a file in themes/
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// AudioConfig contains sound cue settings.
type AudioConfig struct {
	Enabled bool        `toml:"enabled"`
	Volume  int         `toml:"volume"` // 0-100
	Sounds  SoundConfig `toml:"sounds"`
}

// SoundConfig contains per-cue sound file paths.
type SoundConfig struct {
	Show        string `toml:"show"`
	Shake       string `toml:"shake"`
	Information string `toml:"information"`
	Warning     string `toml:"warning"`
	Error       string `toml:"error"`
	Confirm     string `toml:"confirm"`
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// Corner represents the screen anchor of a popup stack.
type Corner string

const (
	CornerTopLeft      Corner = "top-left"
	CornerTopRight     Corner = "top-right"
	CornerTopCenter    Corner = "top-center"
	CornerCenter       Corner = "center"
	CornerBottomLeft   Corner = "bottom-left"
	CornerBottomRight  Corner = "bottom-right"
	CornerBottomCenter Corner = "bottom-center"
)

// ValidCorners returns all valid corner values.
func ValidCorners() []Corner {
	return []Corner{
		CornerTopLeft,
		CornerTopRight,
		CornerTopCenter,
		CornerCenter,
		CornerBottomLeft,
		CornerBottomRight,
		CornerBottomCenter,
	}
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Display: DisplayConfig{
			Corner:       string(CornerBottomRight),
			Monitor:      -1,
			Width:        300,
			Height:       87,
			Padding:      20,
			Gap:          10,
			CloseRegion:  20,
			MoveDuration: Duration(time.Second),
			MoveEasing:   "linear",
			FrameRate:    60,
		},
		Timeouts: TimeoutConfig{
			HideAfter: Duration(5 * time.Second),
		},
		Behavior: BehaviorConfig{
			KeepOnClick:     false,
			HideCloseButton: false,
		},
		Shake: ShakeConfig{
			Duration:  Duration(250 * time.Millisecond),
			Amplitude: 6,
		},
		Theme: ThemeConfig{
			Name:        "light",
			ColorScheme: string(ColorSchemeSystem),
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  80,
		},
	}
}

// ConfigDir returns the toasty configuration directory.
func ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "toasty"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toasty.toml"), nil
}

// ThemesDir returns the path to the user's themes directory.
func ThemesDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "themes"), nil
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns the default config if the file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("failed to get config path: %w", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// If path is empty, uses the default config path.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		path, err = ConfigPath()
		if err != nil {
			return fmt.Errorf("failed to get config path: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	validCorner := false
	for _, corner := range ValidCorners() {
		if c.Display.Corner == string(corner) {
			validCorner = true
			break
		}
	}
	if !validCorner {
		return fmt.Errorf("invalid corner %q, must be one of: %v", c.Display.Corner, ValidCorners())
	}

	if c.Display.Width < 50 || c.Display.Width > 2000 {
		return fmt.Errorf("width must be between 50 and 2000, got %d", c.Display.Width)
	}
	if c.Display.Height < 20 || c.Display.Height > 1000 {
		return fmt.Errorf("height must be between 20 and 1000, got %d", c.Display.Height)
	}
	if c.Display.Padding < 0 || c.Display.Gap < 0 {
		return fmt.Errorf("padding and gap must not be negative")
	}
	if c.Display.CloseRegion < 0 || c.Display.CloseRegion > c.Display.Width {
		return fmt.Errorf("close_region must be between 0 and width, got %d", c.Display.CloseRegion)
	}
	if c.Display.FrameRate < 1 || c.Display.FrameRate > 240 {
		return fmt.Errorf("frame_rate must be between 1 and 240, got %d", c.Display.FrameRate)
	}
	if c.Display.MoveDuration < 0 || c.Timeouts.HideAfter < 0 || c.Shake.Duration < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	if c.Display.MoveEasing == "" {
		return fmt.Errorf("move_easing must not be empty")
	}
	if c.Shake.Amplitude < 0 {
		return fmt.Errorf("shake amplitude must not be negative, got %d", c.Shake.Amplitude)
	}

	validScheme := false
	for _, s := range ValidColorSchemes() {
		if c.Theme.ColorScheme == string(s) {
			validScheme = true
			break
		}
	}
	if !validScheme {
		return fmt.Errorf("invalid color_scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}

	return nil
}

// FrameInterval returns the time between animation ticks.
func (c *Config) FrameInterval() time.Duration {
	if c.Display.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Display.FrameRate)
}

// SoundForCue returns the sound file path for the named cue.
// Expands ~ to the home directory.
func (c *Config) SoundForCue(cue string) string {
	var path string
	switch cue {
	case "show":
		path = c.Audio.Sounds.Show
	case "shake":
		path = c.Audio.Sounds.Shake
	case "information":
		path = c.Audio.Sounds.Information
	case "warning":
		path = c.Audio.Sounds.Warning
	case "error":
		path = c.Audio.Sounds.Error
	case "confirm":
		path = c.Audio.Sounds.Confirm
	}
	return ExpandPath(path)
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
