package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/config"
)

type fakeSink struct {
	played    []string
	preloaded []string
	volume    float64
	cleared   int
	closed    bool
}

func (s *fakeSink) Play(path string) error { s.played = append(s.played, path); return nil }
func (s *fakeSink) Preload(path string) error { s.preloaded = append(s.preloaded, path); return nil }
func (s *fakeSink) SetVolume(v float64) { s.volume = v }
func (s *fakeSink) ClearCache() { s.cleared++ }
func (s *fakeSink) Close() { s.closed = true }

func soundConfig(t *testing.T) (*config.Config, string, string) {
	t.Helper()
	dir := t.TempDir()
	pop := filepath.Join(dir, "pop.wav")
	warn := filepath.Join(dir, "warn.ogg")
	require.NoError(t, os.WriteFile(pop, []byte("RIFF"), 0644))
	require.NoError(t, os.WriteFile(warn, []byte("OggS"), 0644))

	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Volume = 40
	cfg.Audio.Sounds.Show = pop
	cfg.Audio.Sounds.Warning = warn
	cfg.Audio.Sounds.Error = filepath.Join(dir, "missing.wav")
	return cfg, pop, warn
}

func TestManager_PlaysConfiguredCues(t *testing.T) {
	cfg, pop, warn := soundConfig(t)
	sink := &fakeSink{}
	m := NewManager(cfg, sink, nil)

	assert.True(t, m.Enabled())
	assert.InDelta(t, 0.4, sink.volume, 0.001)
	assert.Equal(t, []string{"show", "warning"}, m.Cues(), "missing files are skipped")

	require.NoError(t, m.PlayShow("warning"))
	require.NoError(t, m.PlayShow("information"))
	require.NoError(t, m.PlayShow("error"))
	require.NoError(t, m.Play(CueShake))

	assert.Equal(t, []string{warn, pop, pop}, sink.played)
}

func TestManager_Disabled(t *testing.T) {
	cfg, _, _ := soundConfig(t)
	cfg.Audio.Enabled = false
	sink := &fakeSink{}
	m := NewManager(cfg, sink, nil)

	require.NoError(t, m.PlayShow("warning"))
	assert.Empty(t, sink.played)
	assert.Empty(t, sink.preloaded)
	assert.False(t, m.Enabled())
}

func TestManager_Reconfigure(t *testing.T) {
	cfg, _, warn := soundConfig(t)
	sink := &fakeSink{}
	m := NewManager(cfg, sink, nil)

	cfg.Audio.Sounds.Show = ""
	m.Configure(cfg)
	assert.Equal(t, 2, sink.cleared)
	assert.Equal(t, []string{"warning"}, m.Cues())

	require.NoError(t, m.PlayShow("plain"))
	assert.Empty(t, sink.played)
	require.NoError(t, m.PlayShow("warning"))
	assert.Equal(t, []string{warn}, sink.played)

	m.Close()
	assert.True(t, sink.closed)
}

func TestPlayer_Volume(t *testing.T) {
	p := NewPlayer(nil)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestPlayer_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beep.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC"), 0644))

	p := NewPlayer(nil)
	assert.Error(t, p.Play(path))
	assert.Error(t, p.Preload(filepath.Join(t.TempDir(), "missing.wav")))
	assert.NoError(t, p.Play(""))
}

func TestVolumeToBase2(t *testing.T) {
	assert.Equal(t, 0.0, volumeToBase2(1))
	assert.Equal(t, -1.0, volumeToBase2(0.5))
	assert.Equal(t, -10.0, volumeToBase2(0))
}
