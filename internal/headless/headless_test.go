package headless

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/toasty/internal/frame"
	"github.com/jmylchreest/toasty/internal/toast"
)

func newRegistry(t *testing.T) (*toast.Registry, *Host, *frame.Manual) {
	t.Helper()
	host := NewHost()
	driver := frame.NewManual()
	reg := toast.NewRegistry(toast.Options{
		Corner:  toast.TopLeft,
		Factory: host,
		Screens: toast.StaticScreens{{ID: "0", Bounds: toast.Rect{Width: 1280, Height: 720}}},
		Driver:  driver,
	}, nil)
	return reg, host, driver
}

func TestHost_TracksSurfaceLifecycle(t *testing.T) {
	reg, host, _ := newRegistry(t)

	p, err := reg.Show(toast.Request{Title: "hello"})
	require.NoError(t, err)

	s, ok := host.Surface(p.ID())
	require.True(t, ok)
	assert.True(t, s.Visible())
	assert.Equal(t, toast.Rect{X: 20, Y: 20, Width: 300, Height: 87}, s.Bounds())
	assert.Equal(t, "hello", s.Frame().Title)
	assert.Equal(t, 1, host.Live())

	require.NoError(t, reg.Close(p.ID()))
	assert.False(t, s.Visible())
	assert.Equal(t, 0, host.Live())
	assert.Equal(t, 1, host.Released())
}

func TestHost_MissingImage(t *testing.T) {
	reg, host, _ := newRegistry(t)

	p, err := reg.Show(toast.Request{Title: "pic", Image: filepath.Join(t.TempDir(), "nope.png")})
	require.NotNil(t, p)
	assert.ErrorIs(t, err, toast.ErrImageLoad)

	var hostErr *toast.HostError
	assert.ErrorAs(t, err, &hostErr)
	assert.Equal(t, 1, host.Live())
}

func TestSurface_RepaintsEveryTick(t *testing.T) {
	reg, host, driver := newRegistry(t)

	p, err := reg.Show(toast.Request{Title: "tick", HideAfter: time.Second})
	require.NoError(t, err)
	s, _ := host.Surface(p.ID())
	before := s.Paints()

	driver.Advance(100*time.Millisecond, 10*time.Millisecond)
	assert.Greater(t, s.Paints(), before)
	assert.Positive(t, s.Frame().Progress)
}
