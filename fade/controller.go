package fade

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Controller runs fade sessions on a background goroutine.
//
// At most one session goroutine exists at a time. The goroutine never calls
// the host; when the threshold is reached it invokes the onComplete callback,
// which is expected to hand the stop over to the host's main context. The
// State holds the threshold until that callback resets it, so the stream stays
// silent until playback has actually stopped. Without a callback the State is
// reset directly.
type Controller struct {
	state      *State
	cfg        *Config
	tp         TimeProvider
	onComplete func()

	// mu serializes Start. running is set before a session goroutine is
	// spawned and cleared once its loop has returned.
	mu      sync.Mutex
	running atomic.Bool

	group  errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller driving state. onComplete is called from
// the session goroutine once a session reaches the silence threshold.
func NewController(state *State, cfg *Config, onComplete func()) *Controller {
	logrus.WithFields(logrus.Fields{
		"function":      "NewController",
		"max_reduction": cfg.MaxReduction,
		"step_interval": cfg.StepInterval,
	}).Debug("Creating fade controller")

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		state:      state,
		cfg:        cfg,
		tp:         getTimeProvider(cfg.TimeProvider),
		onComplete: onComplete,
		ctx:        ctx,
		cancel:     cancel,
	}
	c.group.SetLimit(1)
	return c
}

// Start begins a fade session of the given duration and returns immediately.
//
// It fails with ErrNotProcessing when the host pipeline is not running the
// effect, with ErrFadeActive when a session is in progress and with
// ErrTaskUnavailable when the previous session goroutine has not exited yet.
// A refused call never touches the State.
func (c *Controller) Start(duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() != nil {
		return ErrControllerClosed
	}
	if !c.state.Processing() {
		return ErrNotProcessing
	}
	if c.running.Load() {
		if c.state.Active() {
			return ErrFadeActive
		}
		return fmt.Errorf("%w: previous session still running", ErrTaskUnavailable)
	}

	ramp := NewRamp(c.state, duration, c.cfg)
	if _, ok := ramp.Begin(); !ok {
		return ErrFadeActive
	}

	c.running.Store(true)
	if !c.group.TryGo(func() error {
		defer c.running.Store(false)
		c.run(ramp)
		return nil
	}) {
		// The previous goroutine has left its loop but not yet released
		// its slot, so nothing else writes the State.
		c.running.Store(false)
		c.state.Reset()
		return fmt.Errorf("%w: previous session still releasing", ErrTaskUnavailable)
	}

	logrus.WithFields(logrus.Fields{
		"function":    "Controller.Start",
		"duration":    duration,
		"step_factor": ramp.Factor(),
		"steps":       ramp.Total(),
	}).Info("Fade session started")

	return nil
}

// run is the session loop: wait one interval, stop on cancellation, finish on
// the threshold, otherwise take the next step.
func (c *Controller) run(ramp *Ramp) {
	pace := newPacer(c.tp, c.cfg.StepInterval)

	for {
		timer := c.tp.NewTimer(pace.next())
		select {
		case <-c.ctx.Done():
			timer.Stop()
			logrus.WithFields(logrus.Fields{
				"function": "Controller.run",
				"steps":    ramp.Steps(),
			}).Debug("Fade session cancelled by controller shutdown")
			return
		case <-timer.C:
		}

		if !c.state.Active() {
			logrus.WithFields(logrus.Fields{
				"function": "Controller.run",
				"steps":    ramp.Steps(),
			}).Debug("Fade session reset externally")
			return
		}

		if ramp.Done() {
			logrus.WithFields(logrus.Fields{
				"function":       "Controller.run",
				"steps":          ramp.Steps(),
				"gain_reduction": ramp.Gain(),
			}).Info("Fade session reached silence threshold")
			if c.onComplete == nil {
				c.state.Reset()
				return
			}
			c.onComplete()
			return
		}

		if _, ok := ramp.Step(); !ok {
			return
		}
	}
}

// Wait blocks until the current session goroutine, if any, has returned.
func (c *Controller) Wait() {
	_ = c.group.Wait()
}

// Close resets the state, cancels any running session and waits for its
// goroutine to exit. Start fails with ErrControllerClosed afterwards.
func (c *Controller) Close() {
	c.state.Reset()
	c.cancel()
	c.Wait()

	logrus.WithFields(logrus.Fields{
		"function": "Controller.Close",
	}).Debug("Fade controller closed")
}
