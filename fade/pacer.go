package fade

import "time"

// pacer keeps the ramp on a fixed cadence regardless of timer granularity.
//
// It tracks a virtual deadline that advances by one interval per step and
// waits only for what is left until that deadline. Oversleeping one step
// shortens the next wait, so the average cadence over a session converges to
// the interval.
type pacer struct {
	tp       TimeProvider
	interval time.Duration
	deadline time.Time
}

func newPacer(tp TimeProvider, interval time.Duration) *pacer {
	return &pacer{
		tp:       tp,
		interval: interval,
		deadline: tp.Now(),
	}
}

// next advances the deadline by one interval and returns how long to wait for it.
func (p *pacer) next() time.Duration {
	p.deadline = p.deadline.Add(p.interval)
	wait := p.deadline.Sub(p.tp.Now())
	if wait < 0 {
		return 0
	}
	return wait
}
