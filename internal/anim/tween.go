package anim

import (
	"time"

	"github.com/tanema/gween/ease"
)

// MaxValues is the largest number of values a single property can carry.
const MaxValues = 2

// Property selects which value of a target a tween drives.
type Property int

const (
	PropertyX Property = iota + 1
	PropertyY
	PropertyXY
	PropertyProgress
)

// String returns the property name used in logs.
func (p Property) String() string {
	switch p {
	case PropertyX:
		return "x"
	case PropertyY:
		return "y"
	case PropertyXY:
		return "xy"
	case PropertyProgress:
		return "progress"
	default:
		return "unknown"
	}
}

// Arity returns how many values the property carries.
func (p Property) Arity() int {
	if p == PropertyXY {
		return 2
	}
	return 1
}

// Accessor reads and writes a property of an opaque tween target.
// Values fills dst and returns how many values were written.
type Accessor interface {
	Values(target any, prop Property, dst []float32) int
	SetValues(target any, prop Property, values []float32)
}

// Kind is a caller-defined tag used to tell tweens apart on completion.
type Kind uint8

// Tween interpolates one property of a target from its value at Start to a goal.
// A tween is used once: it runs to completion or is cancelled, then discarded.
type Tween struct {
	target   any
	prop     Property
	accessor Accessor
	duration time.Duration
	easing   ease.TweenFunc

	goal     [MaxValues]float32
	relative bool
	from     [MaxValues]float32
	to       [MaxValues]float32
	n        int

	repeats int
	yoyo    bool
	elapsed time.Duration

	kind  Kind
	owner any

	started   bool
	finished  bool
	cancelled bool
}

// To creates a tween driving prop of target over one cycle of duration d.
// The tween does nothing until it is handed to Animator.Start.
func To(target any, prop Property, accessor Accessor, d time.Duration) *Tween {
	if d < 0 {
		d = 0
	}
	return &Tween{
		target:   target,
		prop:     prop,
		accessor: accessor,
		duration: d,
		easing:   ease.Linear,
		n:        prop.Arity(),
	}
}

// Target sets absolute goal values.
func (t *Tween) Target(values ...float32) *Tween {
	copy(t.goal[:], values)
	t.relative = false
	return t
}

// TargetRelative sets goal values as offsets from the values read at Start.
func (t *Tween) TargetRelative(values ...float32) *Tween {
	copy(t.goal[:], values)
	t.relative = true
	return t
}

// RepeatAutoReverse plays the tween count more times after the first cycle,
// alternating direction each cycle. An odd count ends where the tween began.
func (t *Tween) RepeatAutoReverse(count int) *Tween {
	if count < 0 {
		count = 0
	}
	t.repeats = count
	t.yoyo = true
	return t
}

// Ease sets the easing function. Nil keeps linear easing.
func (t *Tween) Ease(fn ease.TweenFunc) *Tween {
	if fn != nil {
		t.easing = fn
	}
	return t
}

// Tag attaches a kind and an owning object that the completion handler
// can resolve against.
func (t *Tween) Tag(kind Kind, owner any) *Tween {
	t.kind = kind
	t.owner = owner
	return t
}

// Cancel marks the tween inert. The animator drops it on its next update;
// a cancelled tween never completes.
func (t *Tween) Cancel() {
	t.cancelled = true
}

// Kind returns the tag set by Tag.
func (t *Tween) Kind() Kind { return t.kind }

// Owner returns the owner set by Tag.
func (t *Tween) Owner() any { return t.owner }

// Property returns the driven property.
func (t *Tween) Property() Property { return t.prop }

// Cancelled reports whether Cancel was called.
func (t *Tween) Cancelled() bool { return t.cancelled }

// Finished reports whether the tween ran to completion.
func (t *Tween) Finished() bool { return t.finished }

// Active reports whether the tween is started and still running.
func (t *Tween) Active() bool {
	return t.started && !t.finished && !t.cancelled
}

// Elapsed returns the time the tween has been advanced by.
func (t *Tween) Elapsed() time.Duration { return t.elapsed }

// TotalDuration returns the duration of all cycles together.
func (t *Tween) TotalDuration() time.Duration {
	return t.duration * time.Duration(t.repeats+1)
}

// Destination returns the values the tween writes when it completes.
// Only meaningful once the tween is started.
func (t *Tween) Destination() []float32 {
	end := t.final()
	return end[:t.n]
}

// begin captures start values and resolves relative goals.
func (t *Tween) begin() {
	t.accessor.Values(t.target, t.prop, t.from[:t.n])
	for i := 0; i < t.n; i++ {
		if t.relative {
			t.to[i] = t.from[i] + t.goal[i]
		} else {
			t.to[i] = t.goal[i]
		}
	}
	t.started = true
}

// advance moves the tween forward by dt and reports whether it completed.
func (t *Tween) advance(dt time.Duration) bool {
	if dt > 0 {
		t.elapsed += dt
	}

	if t.duration <= 0 || t.elapsed >= t.TotalDuration() {
		end := t.final()
		t.accessor.SetValues(t.target, t.prop, end[:t.n])
		return true
	}

	cycle := int(t.elapsed / t.duration)
	local := t.elapsed - time.Duration(cycle)*t.duration
	if t.yoyo && cycle%2 == 1 {
		local = t.duration - local
	}

	var values [MaxValues]float32
	d := float32(t.duration.Seconds())
	at := float32(local.Seconds())
	for i := 0; i < t.n; i++ {
		values[i] = t.easing(at, t.from[i], t.to[i]-t.from[i], d)
	}
	t.accessor.SetValues(t.target, t.prop, values[:t.n])
	return false
}

// final returns the exact end values: the start for an even number of
// auto-reversed cycles, the goal otherwise.
func (t *Tween) final() [MaxValues]float32 {
	if t.yoyo && (t.repeats+1)%2 == 0 {
		return t.from
	}
	return t.to
}
