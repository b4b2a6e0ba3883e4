// Package anim implements a frame-driven tween scheduler.
//
// An Animator owns no targets, only tween state. A render driver calls Update
// once per frame with the elapsed time; each live tween interpolates its
// property through an easing function and writes it back through an Accessor.
package anim

import (
	"sort"
	"time"

	"github.com/tanema/gween/ease"
)

// Animator advances every scheduled tween by a time delta.
// It is not safe for concurrent use; callers serialise access.
type Animator struct {
	tweens     []*Tween
	pending    []*Tween
	updating   bool
	onComplete func(*Tween)
}

// NewAnimator creates an animator. onComplete is invoked exactly once for
// every tween that runs to completion, from inside Update.
func NewAnimator(onComplete func(*Tween)) *Animator {
	return &Animator{onComplete: onComplete}
}

// Start captures the tween's start values and schedules it.
// Tweens started during Update begin advancing on the next Update.
func (a *Animator) Start(t *Tween) *Tween {
	if t == nil || t.started {
		return t
	}
	t.begin()
	if a.updating {
		a.pending = append(a.pending, t)
	} else {
		a.tweens = append(a.tweens, t)
	}
	return t
}

// Update advances all live tweens by dt.
func (a *Animator) Update(dt time.Duration) {
	a.updating = true
	for _, t := range a.tweens {
		if t.cancelled || t.finished {
			continue
		}
		if t.advance(dt) {
			t.finished = true
			if a.onComplete != nil {
				a.onComplete(t)
			}
		}
	}
	a.updating = false

	live := a.tweens[:0]
	for _, t := range a.tweens {
		if !t.cancelled && !t.finished {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(a.tweens); i++ {
		a.tweens[i] = nil
	}
	a.tweens = live

	for _, t := range a.pending {
		if !t.cancelled {
			a.tweens = append(a.tweens, t)
		}
	}
	a.pending = a.pending[:0]
}

// Len returns the number of tweens that are scheduled and not cancelled.
func (a *Animator) Len() int {
	n := 0
	for _, t := range a.tweens {
		if t.Active() {
			n++
		}
	}
	for _, t := range a.pending {
		if t.Active() {
			n++
		}
	}
	return n
}

// CancelAll cancels every scheduled tween.
func (a *Animator) CancelAll() {
	for _, t := range a.tweens {
		t.Cancel()
	}
	for _, t := range a.pending {
		t.Cancel()
	}
}

var easings = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"out-back":     ease.OutBack,
	"out-bounce":   ease.OutBounce,
	"out-elastic":  ease.OutElastic,
}

// EaseByName returns the easing function registered under name.
func EaseByName(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[name]
	return fn, ok
}

// EaseNames returns the known easing names, sorted.
func EaseNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
