package daemon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/frame"
	"github.com/jmylchreest/toasty/internal/headless"
	"github.com/jmylchreest/toasty/internal/toast"
)

type fakeAudio struct {
	mu         sync.Mutex
	cues       []string
	configured int
}

func (a *fakeAudio) Play(cue string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cues = append(a.cues, cue)
	return nil
}

func (a *fakeAudio) PlayShow(kind string) error { return a.Play("show:" + kind) }

func (a *fakeAudio) Configure(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configured++
}

type fixture struct {
	svc    *Service
	host   *headless.Host
	driver *frame.Manual
	audio  *fakeAudio
	events *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		host:   headless.NewHost(),
		driver: frame.NewManual(),
		audio:  &fakeAudio{},
		events: &bytes.Buffer{},
	}
	svc, err := New(Options{
		Config:  config.DefaultConfig(),
		Factory: f.host,
		Screens: toast.NewScreenSet(toast.Screen{ID: "0", Bounds: toast.Rect{Width: 1920, Height: 1080}}),
		Driver:  f.driver,
		Audio:   f.audio,
		Events:  f.events,
	}, nil)
	require.NoError(t, err)
	f.svc = svc
	t.Cleanup(svc.Shutdown)
	return f
}

func (f *fixture) eventTypes(t *testing.T) []input.EventType {
	t.Helper()
	var types []input.EventType
	scanner := bufio.NewScanner(bytes.NewReader(f.events.Bytes()))
	for scanner.Scan() {
		var ev input.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		types = append(types, ev.Type)
	}
	return types
}

func TestService_ServeRunsCommands(t *testing.T) {
	f := newFixture(t)
	f.svc.Notifier().SetEnabled(false)

	script := `{"op":"show","title":"one","kind":"warning"}
{"op":"show","title":"two"}
{"op":"close","index":0}
`
	require.NoError(t, f.svc.Serve(context.Background(), strings.NewReader(script)))

	popups := f.svc.Registry().Popups()
	require.Len(t, popups, 1)
	assert.Equal(t, "two", popups[0].Content().Title)

	assert.Equal(t, []input.EventType{input.EventShown, input.EventShown, input.EventClosed}, f.eventTypes(t))
	assert.Equal(t, []string{"show:warning", "show:plain"}, f.audio.cues)
}

func TestService_ServeSkipsMalformedLines(t *testing.T) {
	f := newFixture(t)

	script := `{"op":"show","title":"ok"}
not json
{"op":"explode"}
{"op":"close","id":"missing"}
{"op":"show","title":"still ok"}
`
	require.NoError(t, f.svc.Serve(context.Background(), strings.NewReader(script)))
	assert.Equal(t, 2, f.svc.Registry().Len())
}

func TestService_ServeDispatches(t *testing.T) {
	f := newFixture(t)
	var queued []func()
	f.svc.dispatch = func(fn func()) { queued = append(queued, fn) }

	require.NoError(t, f.svc.Serve(context.Background(), strings.NewReader(`{"op":"show","title":"later"}`)))
	assert.Zero(t, f.svc.Registry().Len(), "commands wait for the dispatch thread")

	require.Len(t, queued, 1)
	queued[0]()
	assert.Equal(t, 1, f.svc.Registry().Len())
}

func TestService_ServeHonoursAtAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := f.svc.Serve(ctx, strings.NewReader(`{"op":"show","title":"late","at":"1h"}`))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, f.svc.Registry().Len())
}

func TestService_ApplyConfig(t *testing.T) {
	f := newFixture(t)
	f.svc.Notifier().SetEnabled(false)

	p, err := f.svc.Registry().Show(toast.Request{Title: "x"})
	require.NoError(t, err)

	var reloaded *config.Config
	f.svc.OnReload(func(cfg *config.Config) { reloaded = cfg })

	cfg := config.DefaultConfig()
	cfg.Display.Corner = "top-left"
	cfg.Display.Width = 400
	require.NoError(t, f.svc.ApplyConfig(cfg))

	assert.Same(t, cfg, reloaded)
	assert.Same(t, cfg, f.svc.Config())
	assert.Equal(t, 1, f.audio.configured)
	assert.Equal(t, 400, f.svc.Registry().Layout().Width)

	s, ok := f.host.Surface(p.ID())
	require.True(t, ok)
	assert.Equal(t, 400, s.Bounds().Width)

	// New popups use the reloaded corner.
	require.NoError(t, f.svc.Serve(context.Background(), strings.NewReader(`{"op":"show","title":"y"}`)))
	popups := f.svc.Registry().Popups()
	assert.Equal(t, toast.TopLeft, popups[len(popups)-1].Key().Corner)
}

func TestService_ApplyConfigRejectsBadEasing(t *testing.T) {
	f := newFixture(t)
	before := f.svc.Config()

	cfg := config.DefaultConfig()
	cfg.Display.MoveEasing = "wobbly"
	assert.Error(t, f.svc.ApplyConfig(cfg))
	assert.Same(t, before, f.svc.Config())

	// The error is shown as an internal popup.
	popups := f.svc.Registry().Popups()
	require.Len(t, popups, 1)
	assert.Equal(t, "Configuration Error", popups[0].Content().Title)
	assert.Equal(t, toast.KindWarning, popups[0].Content().Kind)
}

func TestInternalNotifier_RateLimits(t *testing.T) {
	var shown []input.Command
	n := NewInternalNotifier(func(cmd input.Command) { shown = append(shown, cmd) }, nil)
	now := time.Unix(100, 0)
	n.now = func() time.Time { return now }

	n.NotifyConfigReloaded()
	n.NotifyConfigReloaded()
	require.Len(t, shown, 1)
	assert.Equal(t, "information", shown[0].Kind)
	require.NotNil(t, shown[0].HideAfter)
	assert.Equal(t, 5*time.Second, shown[0].HideAfter.Duration())

	n.NotifyThemeError(assert.AnError)
	assert.Len(t, shown, 2, "keys are limited independently")

	now = now.Add(6 * time.Second)
	n.NotifyConfigReloaded()
	assert.Len(t, shown, 3)

	n.SetEnabled(false)
	now = now.Add(time.Minute)
	n.NotifyConfigReloaded()
	assert.Len(t, shown, 3)
}
