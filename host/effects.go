package host

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Effect is the hook set an effect plugin exposes to the audio pipeline.
//
// Start, Process, Flush and Finish run on the pipeline goroutine. Process and
// Finish may modify the buffer in place and return it, or return another one.
type Effect interface {
	// Name returns a human-readable name for logging and display.
	Name() string

	// Start is called before the first buffer of a stream.
	Start(channels, rate int)

	// Process transforms one buffer of interleaved samples.
	Process(samples []float32) []float32

	// Flush is called when buffered audio is discarded, as on a seek.
	Flush()

	// Finish transforms the last buffer of a stream. The stream ends
	// naturally or because playback was stopped.
	Finish(samples []float32, endOfPlaylist bool) []float32
}

type chainEntry struct {
	effect Effect
	order  int
}

// EffectChain runs effects sequentially, lowest order first.
//
// The effect list is guarded by a mutex that is held while hooks run, so
// effects can be added from the main context while a stream plays.
type EffectChain struct {
	mu      sync.Mutex
	effects []chainEntry
}

// NewEffectChain creates an empty effect chain.
func NewEffectChain() *EffectChain {
	logrus.WithFields(logrus.Fields{
		"function": "NewEffectChain",
	}).Debug("Creating new effect chain")

	return &EffectChain{}
}

// Add inserts effect at the position given by order. Effects with equal
// order run in the order they were added.
func (c *EffectChain) Add(effect Effect, order int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.effects = append(c.effects, chainEntry{effect: effect, order: order})
	sort.SliceStable(c.effects, func(i, j int) bool {
		return c.effects[i].order < c.effects[j].order
	})

	logrus.WithFields(logrus.Fields{
		"function":     "EffectChain.Add",
		"effect_name":  effect.Name(),
		"order":        order,
		"effect_count": len(c.effects),
	}).Info("Effect added to chain")
}

// Remove takes effect out of the chain and reports whether it was present.
func (c *EffectChain) Remove(effect Effect) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, entry := range c.effects {
		if entry.effect == effect {
			c.effects = append(c.effects[:i], c.effects[i+1:]...)
			logrus.WithFields(logrus.Fields{
				"function":    "EffectChain.Remove",
				"effect_name": effect.Name(),
			}).Info("Effect removed from chain")
			return true
		}
	}
	return false
}

// Names returns the effect names in processing order.
func (c *EffectChain) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, len(c.effects))
	for i, entry := range c.effects {
		names[i] = entry.effect.Name()
	}
	return names
}

// Len returns the number of effects in the chain.
func (c *EffectChain) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.effects)
}

// Start forwards the stream start to every effect.
func (c *EffectChain) Start(channels, rate int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.effects {
		entry.effect.Start(channels, rate)
	}
}

// Process passes samples through every effect in order.
func (c *EffectChain) Process(samples []float32) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.effects {
		samples = entry.effect.Process(samples)
	}
	return samples
}

// Flush forwards a flush to every effect.
func (c *EffectChain) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.effects {
		entry.effect.Flush()
	}
}

// Finish passes the last buffer of a stream through every effect's Finish hook.
func (c *EffectChain) Finish(samples []float32, endOfPlaylist bool) []float32 {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, entry := range c.effects {
		samples = entry.effect.Finish(samples, endOfPlaylist)
	}
	return samples
}
