package host

import (
	"context"
	"sync"
	"time"
)

// Output is the audio sink at the end of the pipeline.
//
// Open, Write and Drain are called from the pipeline goroutine. Stop may be
// called from the main context at any time and unblocks a pending Write.
type Output interface {
	Open(rate, channels int) error
	Write(samples []float32) error
	Drain(ctx context.Context) error
	Stop()
}

// NullOutput discards audio. With Realtime set it paces writes to the play
// time of the samples, like a sound card would. With Capture set it keeps a
// copy of everything written.
type NullOutput struct {
	Realtime bool
	Capture  bool

	mu       sync.Mutex
	rate     int
	channels int
	stop     chan struct{}
	written  int
	captured []float32
}

// NewNullOutput returns a NullOutput.
func NewNullOutput(realtime bool) *NullOutput {
	return &NullOutput{Realtime: realtime}
}

// Open prepares the output for a stream.
func (o *NullOutput) Open(rate, channels int) error {
	if channels < 1 || rate <= 0 {
		return ErrUnsupportedChannels
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.rate = rate
	o.channels = channels
	o.stop = make(chan struct{})
	return nil
}

// Write consumes samples.
func (o *NullOutput) Write(samples []float32) error {
	o.mu.Lock()
	stop := o.stop
	if stop == nil {
		o.mu.Unlock()
		return ErrOutputClosed
	}
	o.written += len(samples)
	if o.Capture {
		o.captured = append(o.captured, samples...)
	}
	rate, channels := o.rate, o.channels
	o.mu.Unlock()

	if !o.Realtime || len(samples) == 0 {
		return nil
	}

	frames := len(samples) / channels
	timer := time.NewTimer(time.Duration(frames) * time.Second / time.Duration(rate))
	defer timer.Stop()
	select {
	case <-stop:
		return ErrOutputClosed
	case <-timer.C:
		return nil
	}
}

// Drain returns at once; nothing is buffered.
func (o *NullOutput) Drain(ctx context.Context) error {
	return ctx.Err()
}

// Stop closes the output. Pending and later writes fail with ErrOutputClosed
// until the next Open.
func (o *NullOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stop != nil {
		close(o.stop)
		o.stop = nil
	}
}

// Written returns the number of samples written so far.
func (o *NullOutput) Written() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.written
}

// Captured returns a copy of the captured samples.
func (o *NullOutput) Captured() []float32 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]float32(nil), o.captured...)
}
