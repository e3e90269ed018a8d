// Package mainloop provides the main/control execution context of the
// reference host.
//
// Any goroutine, including the real-time audio path, may Post a callback;
// Post never blocks. Callbacks run one at a time, in posting order, on the
// goroutine that drives the loop with Run or RunPending.
package mainloop

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Loop is a FIFO queue of callbacks drained on a single goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

// New creates an empty loop.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post queues fn. It is safe for concurrent use and never blocks. Callbacks
// posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Notify returns a channel that receives a value whenever callbacks are
// pending. Drivers other than Run (for instance a UI event loop) use it to
// schedule RunPending on their own goroutine.
func (l *Loop) Notify() <-chan struct{} {
	return l.wake
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// RunPending runs the callbacks queued so far and returns how many ran.
// Callbacks posted while draining run on the next call.
func (l *Loop) RunPending() int {
	l.mu.Lock()
	queue := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Run drains the loop until ctx is done, then returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	logrus.WithFields(logrus.Fields{
		"function": "Loop.Run",
	}).Debug("Main loop started")

	// Callbacks posted before Run may have already consumed the wake token.
	l.RunPending()

	for {
		select {
		case <-ctx.Done():
			logrus.WithFields(logrus.Fields{
				"function": "Loop.Run",
				"pending":  l.Pending(),
			}).Debug("Main loop stopped")
			return ctx.Err()
		case <-l.wake:
			l.RunPending()
		}
	}
}

// Close drops all queued callbacks and refuses new ones.
func (l *Loop) Close() {
	l.mu.Lock()
	dropped := len(l.queue)
	l.queue = nil
	l.closed = true
	l.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Loop.Close",
		"dropped":  dropped,
	}).Debug("Main loop closed")
}
