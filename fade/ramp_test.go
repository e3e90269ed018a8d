package fade

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

func TestStepFactor_ReachesMaxReduction(t *testing.T) {
	for tenths := 10; tenths <= 100; tenths++ {
		seconds := float64(tenths) / 10
		factor := StepFactor(secondsToDuration(seconds), DefaultMaxReduction, DefaultStepInterval)

		reached := math.Pow(factor, 100*seconds)
		assert.InEpsilon(t, DefaultMaxReduction, reached, 1e-9, "duration %.1fs", seconds)
		assert.Greater(t, factor, 1.0)
	}
}

func TestStepFactor_MatchesPerSecondFormula(t *testing.T) {
	for _, seconds := range []float64{1, 2.5, 4, 7.3, 10} {
		want := math.Pow(200, 1/(100*seconds))
		got := StepFactor(secondsToDuration(seconds), 200, 10*time.Millisecond)
		assert.InDelta(t, want, got, 1e-12, "duration %.1fs", seconds)
	}
}

func TestStepFactor_Degenerate(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		max      float64
		interval time.Duration
	}{
		{name: "zero duration", duration: 0, max: 200, interval: DefaultStepInterval},
		{name: "negative duration", duration: -time.Second, max: 200, interval: DefaultStepInterval},
		{name: "zero interval", duration: time.Second, max: 200, interval: 0},
		{name: "no reduction", duration: time.Second, max: 1, interval: DefaultStepInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 1.0, StepFactor(tt.duration, tt.max, tt.interval))
		})
	}
}

func TestStepCount(t *testing.T) {
	tests := []struct {
		duration time.Duration
		interval time.Duration
		want     int
	}{
		{duration: 4 * time.Second, interval: 10 * time.Millisecond, want: 400},
		{duration: time.Second, interval: 10 * time.Millisecond, want: 100},
		{duration: 10 * time.Second, interval: 10 * time.Millisecond, want: 1000},
		{duration: 4100 * time.Millisecond, interval: 10 * time.Millisecond, want: 410},
		{duration: 5 * time.Millisecond, interval: 10 * time.Millisecond, want: 1},
		{duration: 0, interval: 10 * time.Millisecond, want: 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StepCount(tt.duration, tt.interval), "%v / %v", tt.duration, tt.interval)
	}
}

func TestRamp_CrossesThresholdAfterExactSteps(t *testing.T) {
	plugin := New(nil)
	ramp := NewRamp(plugin.state, 4*time.Second, plugin.cfg)
	require.Equal(t, 400, ramp.Total())

	gain, ok := ramp.Begin()
	require.True(t, ok)

	var beforeLast float64
	for !ramp.Done() {
		beforeLast = gain
		gain, ok = ramp.Step()
		require.True(t, ok)
	}

	assert.Equal(t, 400, ramp.Steps())
	assert.GreaterOrEqual(t, gain, 200.0)
	assert.Less(t, beforeLast, 200.0)
	assert.Equal(t, gain, plugin.state.GainReduction())

	out := plugin.Process([]float32{1.0, -1.0})
	for _, v := range out {
		assert.LessOrEqual(t, math.Abs(float64(v)), 1.0/200)
	}
}

func TestRamp_Monotonic(t *testing.T) {
	cfg := DefaultConfig()
	for _, seconds := range []float64{1, 1.7, 4, 6.25, 10} {
		state := NewState()
		ramp := NewRamp(state, secondsToDuration(seconds), cfg)

		gain, ok := ramp.Begin()
		require.True(t, ok)
		prev := gain
		assert.GreaterOrEqual(t, prev, Inactive)

		for !ramp.Done() {
			gain, ok = ramp.Step()
			require.True(t, ok)
			assert.GreaterOrEqual(t, gain, prev, "duration %.2fs step %d", seconds, ramp.Steps())
			prev = gain
		}
		assert.Equal(t, StepCount(secondsToDuration(seconds), cfg.StepInterval), ramp.Steps())
		assert.GreaterOrEqual(t, prev, cfg.MaxReduction)
	}
}

func TestRamp_BeginFailsWhileActive(t *testing.T) {
	state := NewState()
	cfg := DefaultConfig()

	first := NewRamp(state, 4*time.Second, cfg)
	_, ok := first.Begin()
	require.True(t, ok)

	second := NewRamp(state, 2*time.Second, cfg)
	gain, ok := second.Begin()
	assert.False(t, ok)
	assert.Equal(t, first.Gain(), gain)
	assert.Equal(t, 0, second.Steps())
}

func TestRamp_StepAfterResetIsCancelled(t *testing.T) {
	state := NewState()
	ramp := NewRamp(state, 4*time.Second, DefaultConfig())

	_, ok := ramp.Begin()
	require.True(t, ok)
	_, ok = ramp.Step()
	require.True(t, ok)

	state.Reset()

	gain, ok := ramp.Step()
	assert.False(t, ok)
	assert.Equal(t, Inactive, gain)
	assert.Equal(t, Inactive, state.GainReduction())
	assert.Equal(t, 2, ramp.Steps())
}

func TestRamp_SingleStepSession(t *testing.T) {
	cfg := &Config{MaxReduction: 200, StepInterval: 10 * time.Millisecond}
	state := NewState()
	ramp := NewRamp(state, 10*time.Millisecond, cfg)

	gain, ok := ramp.Begin()
	require.True(t, ok)
	assert.Equal(t, 200.0, gain)
	assert.True(t, ramp.Done())
}
