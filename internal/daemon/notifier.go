package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/toast"
)

// NotificationLevel indicates the severity of an internal notification.
type NotificationLevel int

const (
	NotificationLevelInfo NotificationLevel = iota
	NotificationLevelWarning
	NotificationLevelError
)

// internalHideAfter is how long internal notifications stay on screen.
const internalHideAfter = 5 * time.Second

// InternalNotifier shows popups about toastd's own events, such as a config
// reload. Repeats of the same key are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	show func(input.Command)

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration
	now            func() time.Time

	enabled bool
}

// NewInternalNotifier creates a notifier that hands show commands to show.
func NewInternalNotifier(show func(input.Command), logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger,
		show:           show,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// SetEnabled enables or disables internal notifications.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between notifications with the same key.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows an internal notification unless key was used within the
// minimum interval.
func (n *InternalNotifier) Notify(key, title, text string, level NotificationLevel) {
	n.mu.Lock()
	if !n.enabled || n.show == nil {
		n.mu.Unlock()
		return
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key, "title", title)
		return
	}
	n.lastNotifyTime[key] = now
	show := n.show
	n.mu.Unlock()

	kind := toast.KindInformation
	switch level {
	case NotificationLevelWarning:
		kind = toast.KindWarning
	case NotificationLevelError:
		kind = toast.KindError
	}

	hideAfter := input.Duration(internalHideAfter)
	n.logger.Debug("sending internal notification", "key", key, "title", title, "level", level)
	show(input.Command{
		Op:        input.OpShow,
		Title:     title,
		Text:      text,
		Kind:      kind.String(),
		HideAfter: &hideAfter,
	})
}

// NotifyConfigReloaded reports a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration Reloaded",
		"toasty configuration has been reloaded.", NotificationLevelInfo)
}

// NotifyConfigError reports a config file that failed to load.
func (n *InternalNotifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration Error",
		"Failed to reload configuration: "+err.Error(), NotificationLevelWarning)
}

// NotifyThemeReloaded reports a theme picked up from disk.
func (n *InternalNotifier) NotifyThemeReloaded(name string) {
	n.Notify("theme-reload", "Theme Reloaded",
		"Theme '"+name+"' has been reloaded.", NotificationLevelInfo)
}

// NotifyThemeError reports a theme that failed to load.
func (n *InternalNotifier) NotifyThemeError(err error) {
	n.Notify("theme-error", "Theme Error",
		"Failed to load theme: "+err.Error(), NotificationLevelWarning)
}

// NotifyStartup announces the daemon.
func (n *InternalNotifier) NotifyStartup(version string) {
	n.Notify("startup", "toastd Started",
		"toastd "+version+" is reading commands.", NotificationLevelInfo)
}
