package display

import (
	"log/slog"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/toasty/internal/theme"
)

// ThemeLoader installs the popup stylesheet on the display. It keeps the
// configured default theme plus every per-popup override requested so far.
type ThemeLoader struct {
	provider  *gtk.CSSProvider
	logger    *slog.Logger
	themesDir string
	name      string // Configured theme name
	scheme    string // Configured colour scheme
	def       *theme.Theme
	overrides map[string]*theme.Theme
	onChange  func(def *theme.Theme, overrides []*theme.Theme)
}

// NewThemeLoader creates a loader and attaches its provider to the default display.
func NewThemeLoader(themesDir string, logger *slog.Logger) *ThemeLoader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &ThemeLoader{
		provider:  gtk.NewCSSProvider(),
		logger:    logger,
		themesDir: themesDir,
		def:       theme.Light(),
		overrides: make(map[string]*theme.Theme),
	}

	if display := gdk.DisplayGetDefault(); display != nil {
		gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	} else {
		l.logger.Warn("no display available, cannot apply theme")
	}

	// Follow the desktop light/dark preference for the "system" scheme.
	adw.StyleManagerGetDefault().NotifyProperty("dark", func() {
		if l.scheme == "system" {
			l.logger.Info("system colour scheme changed", "dark", systemDark())
			if err := l.Load(l.name, l.scheme); err != nil {
				l.logger.Warn("failed to reload theme", "error", err)
			}
		}
	})
	return l
}

// SetChangeCallback sets the callback invoked whenever the set of loaded
// themes changes, so a file watcher can follow them.
func (l *ThemeLoader) SetChangeCallback(cb func(def *theme.Theme, overrides []*theme.Theme)) {
	l.onChange = cb
}

// Load resolves the default theme, applying the colour scheme. An unknown
// theme keeps the previous default and returns the error.
func (l *ThemeLoader) Load(name, scheme string) error {
	l.name, l.scheme = name, scheme
	effective := theme.EffectiveName(name, scheme, systemDark())

	t, err := theme.Resolve(effective, l.themesDir)
	if err != nil {
		l.apply()
		return err
	}
	l.def = t
	l.apply()
	l.logger.Info("loaded theme", "name", t.Name, "path", t.Path)
	return nil
}

// Ensure loads a per-popup theme override and returns its CSS class.
// An unknown theme returns "" so the popup uses the default style.
func (l *ThemeLoader) Ensure(name string) string {
	if name == "" || name == l.def.Name {
		return ""
	}
	if _, ok := l.overrides[name]; !ok {
		t, err := theme.Resolve(name, l.themesDir)
		if err != nil {
			l.logger.Warn("unknown popup theme, using default", "theme", name, "error", err)
			return ""
		}
		l.overrides[name] = t
		l.apply()
	}
	return theme.ClassName(name)
}

// Update replaces a loaded theme after its file changed on disk.
func (l *ThemeLoader) Update(t *theme.Theme) {
	switch {
	case l.def.Path != "" && l.def.Path == t.Path:
		l.def = t
	case l.overrides[t.Name] != nil:
		l.overrides[t.Name] = t
	default:
		return
	}
	l.apply()
	l.logger.Info("hot-reloaded theme", "name", t.Name)
}

// Default returns the current default theme.
func (l *ThemeLoader) Default() *theme.Theme {
	return l.def
}

func (l *ThemeLoader) apply() {
	overrides := make([]*theme.Theme, 0, len(l.overrides))
	for _, t := range l.overrides {
		overrides = append(overrides, t)
	}
	l.provider.LoadFromString(theme.Stylesheet(l.def, overrides...))
	if l.onChange != nil {
		l.onChange(l.def, overrides)
	}
}

// systemDark reports the libadwaita dark preference.
func systemDark() bool {
	return adw.StyleManagerGetDefault().Dark()
}
