package audio

import (
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/jmylchreest/toasty/internal/config"
)

// Cue names. Kind cues use the popup kind name.
const (
	CueShow  = "show"
	CueShake = "shake"
)

// cueNames lists every cue a configuration can map to a file.
var cueNames = []string{CueShow, CueShake, "information", "warning", "error", "confirm"}

// Sink plays sound files. Player is the speaker-backed implementation.
type Sink interface {
	Play(path string) error
	Preload(path string) error
	SetVolume(volume float64)
	ClearCache()
	Close()
}

// Manager maps cues to configured sound files and plays them.
type Manager struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sink    Sink
	enabled bool
	sounds  map[string]string // Cue to expanded path
}

// NewManager creates a manager configured from cfg. A nil sink uses a
// speaker-backed Player.
func NewManager(cfg *config.Config, sink Sink, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = NewPlayer(logger)
	}

	m := &Manager{
		logger: logger,
		sink:   sink,
		sounds: make(map[string]string),
	}
	m.Configure(cfg)
	return m
}

// Configure replaces the sound configuration. Missing files are logged and skipped.
// This is called again when the config file is hot-reloaded.
func (m *Manager) Configure(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sink.ClearCache()
	clear(m.sounds)
	m.enabled = cfg != nil && cfg.Audio.Enabled
	if !m.enabled {
		return
	}

	m.sink.SetVolume(float64(cfg.Audio.Volume) / 100.0)

	for _, cue := range cueNames {
		path := cfg.SoundForCue(cue)
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			m.logger.Warn("sound file not found", "cue", cue, "path", path)
			continue
		}
		if err := m.sink.Preload(path); err != nil {
			m.logger.Warn("failed to preload sound", "cue", cue, "path", path, "error", err)
			continue
		}
		m.sounds[cue] = path
		m.logger.Debug("loaded sound", "cue", cue, "path", path)
	}
}

// Enabled reports whether sound cues are switched on.
func (m *Manager) Enabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Cues returns the cues with a loaded sound, sorted.
func (m *Manager) Cues() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cues := make([]string, 0, len(m.sounds))
	for cue := range m.sounds {
		cues = append(cues, cue)
	}
	sort.Strings(cues)
	return cues
}

// Play plays the sound for cue. Unconfigured cues are silent.
func (m *Manager) Play(cue string) error {
	m.mu.RLock()
	path, ok := m.sounds[cue]
	enabled := m.enabled
	m.mu.RUnlock()

	if !enabled || !ok {
		return nil
	}
	return m.sink.Play(path)
}

// PlayShow plays the cue for a newly shown popup of the given kind,
// falling back to the generic show cue.
func (m *Manager) PlayShow(kind string) error {
	m.mu.RLock()
	_, ok := m.sounds[kind]
	m.mu.RUnlock()

	if ok {
		return m.Play(kind)
	}
	return m.Play(CueShow)
}

// Close releases the audio device.
func (m *Manager) Close() {
	m.sink.Close()
	m.logger.Debug("audio manager stopped")
}
