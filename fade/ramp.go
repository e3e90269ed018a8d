package fade

import (
	"math"
	"time"
)

// StepFactor returns the per-step multiplier that takes the gain reduction
// from 1 to maxReduction in duration/interval steps:
//
//	maxReduction ^ (interval / duration)
//
// With the default 10ms interval this is maxReduction ^ (1 / (100 * seconds)).
// Degenerate inputs yield 1, which never advances a ramp.
func StepFactor(duration time.Duration, maxReduction float64, interval time.Duration) float64 {
	if duration <= 0 || interval <= 0 || maxReduction <= 1 {
		return 1
	}
	return math.Pow(maxReduction, float64(interval)/float64(duration))
}

// StepCount returns the number of ramp steps in a session of the given duration.
func StepCount(duration, interval time.Duration) int {
	if duration <= 0 || interval <= 0 {
		return 1
	}
	n := int(math.Round(float64(duration) / float64(interval)))
	if n < 1 {
		return 1
	}
	return n
}

// Ramp is the time-free stepping core of one fade session. It owns no
// goroutine; the Controller calls Begin once and then Step once per interval.
// A Ramp is used by a single goroutine.
type Ramp struct {
	state  *State
	factor float64
	max    float64
	total  int
	steps  int
	gain   float64
}

// NewRamp prepares a session of the given duration against state.
func NewRamp(state *State, duration time.Duration, cfg *Config) *Ramp {
	return &Ramp{
		state:  state,
		factor: StepFactor(duration, cfg.MaxReduction, cfg.StepInterval),
		max:    cfg.MaxReduction,
		total:  StepCount(duration, cfg.StepInterval),
		gain:   Inactive,
	}
}

// Factor returns the per-step multiplier of this session.
func (r *Ramp) Factor() float64 {
	return r.factor
}

// Total returns the number of steps after which the threshold is crossed.
func (r *Ramp) Total() int {
	return r.total
}

// Steps returns the number of steps taken so far.
func (r *Ramp) Steps() int {
	return r.steps
}

// Gain returns the gain reduction written by the last step.
func (r *Ramp) Gain() float64 {
	return r.gain
}

// Begin takes the first step, activating the State. It fails when another
// session already holds the State.
func (r *Ramp) Begin() (float64, bool) {
	first := r.factor
	if r.total <= 1 && first < r.max {
		first = r.max
	}
	if !r.state.Activate(first) {
		return r.state.GainReduction(), false
	}
	r.steps = 1
	r.gain = first
	return first, true
}

// Step multiplies the gain reduction by the step factor. The final step is
// lifted to exactly the threshold when rounding left it just below, so the
// threshold is crossed after exactly Total steps. Step returns false when the
// State was reset by someone else.
func (r *Ramp) Step() (float64, bool) {
	floor := 0.0
	if r.steps+1 >= r.total {
		floor = r.max
	}
	gain, ok := r.state.Advance(r.factor, floor)
	if !ok {
		return gain, false
	}
	r.steps++
	r.gain = gain
	return gain, true
}

// Done reports whether the threshold has been reached.
func (r *Ramp) Done() bool {
	return r.steps >= r.total || r.gain >= r.max
}
