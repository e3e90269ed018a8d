package fade

import (
	"math"
	"sync/atomic"
)

// Inactive is the gain reduction of a stream that is not being faded.
const Inactive = 1.0

var inactiveBits = math.Float64bits(Inactive)

// State is the value shared between the fade session goroutine and the host's
// audio path.
//
// The gain reduction is stored as the bit pattern of a float64 in an atomic
// word, so the real-time path reads it without locking and never observes a
// torn value. Within one session the stored value only grows; the only other
// write is Reset back to Inactive.
type State struct {
	gain       atomic.Uint64
	processing atomic.Bool
}

// NewState returns an inactive State.
func NewState() *State {
	s := &State{}
	s.gain.Store(inactiveBits)
	return s
}

// GainReduction returns the current divisor applied to every sample.
func (s *State) GainReduction() float64 {
	return math.Float64frombits(s.gain.Load())
}

// Active reports whether a fade session is in progress.
func (s *State) Active() bool {
	return s.gain.Load() != inactiveBits
}

// Processing reports whether the host pipeline is feeding buffers through the effect.
func (s *State) Processing() bool {
	return s.processing.Load()
}

// SetProcessing records whether the host pipeline is running the effect.
func (s *State) SetProcessing(processing bool) {
	s.processing.Store(processing)
}

// Reset marks the State inactive. A running session observes this on its
// next step and exits.
func (s *State) Reset() {
	s.gain.Store(inactiveBits)
}

// Activate starts a session by moving the gain reduction from Inactive to
// first. It fails when a session is already active.
func (s *State) Activate(first float64) bool {
	if first < Inactive || math.IsNaN(first) {
		first = Inactive
	}
	return s.gain.CompareAndSwap(inactiveBits, math.Float64bits(first))
}

// Advance multiplies the gain reduction by factor, raising the result to at
// least floor. It returns false without writing when the State has been reset,
// so a concurrent Reset is never overwritten.
func (s *State) Advance(factor, floor float64) (float64, bool) {
	for {
		old := s.gain.Load()
		if old == inactiveBits {
			return Inactive, false
		}
		cur := math.Float64frombits(old)
		next := cur * factor
		if next < floor {
			next = floor
		}
		if next < cur {
			next = cur
		}
		if s.gain.CompareAndSwap(old, math.Float64bits(next)) {
			return next, true
		}
	}
}
