package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

type point struct {
	x, y, progress float32
	writes         int
}

type pointAccessor struct{}

func (pointAccessor) Values(target any, prop Property, dst []float32) int {
	p := target.(*point)
	switch prop {
	case PropertyX:
		dst[0] = p.x
	case PropertyY:
		dst[0] = p.y
	case PropertyXY:
		dst[0], dst[1] = p.x, p.y
		return 2
	case PropertyProgress:
		dst[0] = p.progress
	}
	return 1
}

func (pointAccessor) SetValues(target any, prop Property, values []float32) {
	p := target.(*point)
	p.writes++
	switch prop {
	case PropertyX:
		p.x = values[0]
	case PropertyY:
		p.y = values[0]
	case PropertyXY:
		p.x, p.y = values[0], values[1]
	case PropertyProgress:
		p.progress = values[0]
	}
}

func TestAnimator_LinearInterpolation(t *testing.T) {
	var completed []*Tween
	a := NewAnimator(func(tw *Tween) { completed = append(completed, tw) })

	p := &point{}
	a.Start(To(p, PropertyProgress, pointAccessor{}, time.Second).Target(300))

	a.Update(500 * time.Millisecond)
	assert.InDelta(t, 150, p.progress, 0.01)
	assert.Empty(t, completed)

	a.Update(500 * time.Millisecond)
	assert.Equal(t, float32(300), p.progress)
	require.Len(t, completed, 1)
	assert.True(t, completed[0].Finished())
	assert.Equal(t, 0, a.Len())

	// Further updates never fire the completion again.
	a.Update(time.Second)
	assert.Len(t, completed, 1)
}

func TestAnimator_CancelIsAdvisory(t *testing.T) {
	completions := 0
	a := NewAnimator(func(*Tween) { completions++ })

	p := &point{}
	tw := a.Start(To(p, PropertyY, pointAccessor{}, 100*time.Millisecond).Target(50))
	a.Update(50 * time.Millisecond)
	y := p.y

	tw.Cancel()
	assert.False(t, tw.Active())
	a.Update(time.Second)

	assert.Equal(t, y, p.y, "cancelled tween must not write")
	assert.Zero(t, completions)
	assert.Equal(t, 0, a.Len())
}

func TestAnimator_CancelDuringUpdate(t *testing.T) {
	p := &point{}
	var other *Tween
	completions := 0
	a := NewAnimator(func(tw *Tween) {
		completions++
		if other != nil && tw != other {
			other.Cancel()
		}
	})

	a.Start(To(p, PropertyX, pointAccessor{}, 10*time.Millisecond).Target(1))
	other = a.Start(To(p, PropertyY, pointAccessor{}, 10*time.Millisecond).Target(1))

	a.Update(20 * time.Millisecond)
	assert.Equal(t, 1, completions)
	assert.Equal(t, float32(0), p.y)
}

func TestAnimator_RelativeYoyoReturnsToStart(t *testing.T) {
	a := NewAnimator(nil)
	p := &point{x: 1580, y: 40}

	tw := a.Start(To(p, PropertyXY, pointAccessor{}, 50*time.Millisecond).
		TargetRelative(-3, 4).
		RepeatAutoReverse(5))
	assert.Equal(t, 300*time.Millisecond, tw.TotalDuration())

	a.Update(50 * time.Millisecond)
	assert.InDelta(t, 1577, p.x, 0.01)
	assert.InDelta(t, 44, p.y, 0.01)

	for i := 0; i < 20; i++ {
		a.Update(16 * time.Millisecond)
	}
	assert.True(t, tw.Finished())
	assert.Equal(t, float32(1580), p.x)
	assert.Equal(t, float32(40), p.y)
}

func TestAnimator_EvenRepeatEndsAtGoal(t *testing.T) {
	a := NewAnimator(nil)
	p := &point{}

	a.Start(To(p, PropertyX, pointAccessor{}, 10*time.Millisecond).Target(8).RepeatAutoReverse(2))
	a.Update(time.Second)
	assert.Equal(t, float32(8), p.x)
}

func TestAnimator_StartDuringUpdateIsDeferred(t *testing.T) {
	p := &point{}
	var a *Animator
	started := false
	a = NewAnimator(func(tw *Tween) {
		if !started {
			started = true
			a.Start(To(p, PropertyY, pointAccessor{}, 100*time.Millisecond).Target(100))
		}
	})

	a.Start(To(p, PropertyX, pointAccessor{}, 0).Target(5))
	a.Update(16 * time.Millisecond)
	assert.Equal(t, float32(5), p.x)
	assert.Equal(t, float32(0), p.y, "follow-up tween starts advancing next frame")
	assert.Equal(t, 1, a.Len())

	a.Update(50 * time.Millisecond)
	assert.InDelta(t, 50, p.y, 0.01)
}

func TestAnimator_ZeroDurationCompletesImmediately(t *testing.T) {
	completions := 0
	a := NewAnimator(func(*Tween) { completions++ })
	p := &point{}

	a.Start(To(p, PropertyProgress, pointAccessor{}, 0).Target(300))
	a.Update(0)
	assert.Equal(t, float32(300), p.progress)
	assert.Equal(t, 1, completions)
}

func TestAnimator_StartIsIdempotent(t *testing.T) {
	a := NewAnimator(nil)
	p := &point{}
	tw := To(p, PropertyX, pointAccessor{}, time.Second).Target(10)
	a.Start(tw)
	a.Start(tw)
	assert.Equal(t, 1, a.Len())
}

func TestTween_TagAndDestination(t *testing.T) {
	a := NewAnimator(nil)
	p := &point{x: 10, y: 20}
	owner := &struct{}{}

	tw := a.Start(To(p, PropertyXY, pointAccessor{}, time.Second).TargetRelative(5, -5).Tag(3, owner))
	assert.Equal(t, Kind(3), tw.Kind())
	assert.Same(t, owner, tw.Owner())
	assert.Equal(t, []float32{15, 15}, tw.Destination())
}

func TestEaseByName(t *testing.T) {
	fn, ok := EaseByName("linear")
	require.True(t, ok)
	assert.Equal(t, float32(5), fn(0.5, 0, 10, 1))

	_, ok = EaseByName("wobble")
	assert.False(t, ok)

	assert.Contains(t, EaseNames(), "out-bounce")
}

func TestTween_CustomEase(t *testing.T) {
	a := NewAnimator(nil)
	p := &point{}
	a.Start(To(p, PropertyX, pointAccessor{}, time.Second).Target(100).Ease(ease.InQuad))
	a.Update(500 * time.Millisecond)
	assert.InDelta(t, 25, p.x, 0.01)
}
