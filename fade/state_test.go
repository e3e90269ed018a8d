package fade

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_NewIsInactive(t *testing.T) {
	state := NewState()
	assert.Equal(t, Inactive, state.GainReduction())
	assert.False(t, state.Active())
	assert.False(t, state.Processing())
}

func TestState_ActivateOnce(t *testing.T) {
	state := NewState()

	require.True(t, state.Activate(1.5))
	assert.True(t, state.Active())
	assert.Equal(t, 1.5, state.GainReduction())

	assert.False(t, state.Activate(2))
	assert.Equal(t, 1.5, state.GainReduction())
}

func TestState_ActivateNeverBelowInactive(t *testing.T) {
	state := NewState()
	state.Activate(0.25)
	assert.Equal(t, Inactive, state.GainReduction())
}

func TestState_Advance(t *testing.T) {
	state := NewState()

	_, ok := state.Advance(2, 0)
	assert.False(t, ok, "advancing an inactive state must fail")
	assert.Equal(t, Inactive, state.GainReduction())

	require.True(t, state.Activate(2))

	gain, ok := state.Advance(2, 0)
	require.True(t, ok)
	assert.Equal(t, 4.0, gain)

	gain, ok = state.Advance(2, 100)
	require.True(t, ok)
	assert.Equal(t, 100.0, gain)

	gain, ok = state.Advance(0.5, 0)
	require.True(t, ok)
	assert.Equal(t, 100.0, gain, "a shrinking factor must not step backwards")

	state.Reset()
	_, ok = state.Advance(2, 0)
	assert.False(t, ok)
	assert.Equal(t, Inactive, state.GainReduction())
}

func TestState_ProcessingFlag(t *testing.T) {
	state := NewState()
	state.SetProcessing(true)
	assert.True(t, state.Processing())

	state.Reset()
	assert.True(t, state.Processing(), "reset only touches the gain reduction")

	state.SetProcessing(false)
	assert.False(t, state.Processing())
}

func TestState_ConcurrentReaderSeesMonotonicSession(t *testing.T) {
	state := NewState()
	require.True(t, state.Activate(1.01))

	const steps = 5000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < steps; i++ {
			state.Advance(1.001, 0)
		}
	}()

	prev := state.GainReduction()
	for i := 0; i < steps; i++ {
		cur := state.GainReduction()
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	wg.Wait()
}
