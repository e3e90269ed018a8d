//go:build !headless

package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

// OtoOutput plays audio through the system sound device.
//
// oto allows one context per process, so the first Open fixes the device
// format; later Opens must use the same rate and channel count.
type OtoOutput struct {
	mu       sync.Mutex
	ctx      *oto.Context
	player   *oto.Player
	pr       *io.PipeReader
	pw       *io.PipeWriter
	rate     int
	channels int
	buf      []byte
}

// NewOtoOutput returns an output that opens the sound device lazily.
func NewOtoOutput() *OtoOutput {
	return &OtoOutput{}
}

// DefaultOutput returns the sound device output.
func DefaultOutput() Output {
	return NewOtoOutput()
}

// Open creates the device context on first use and starts a new player.
func (o *OtoOutput) Open(rate, channels int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   50 * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("open sound device: %w", err)
		}
		<-ready
		o.ctx = ctx
		o.rate = rate
		o.channels = channels

		logrus.WithFields(logrus.Fields{
			"function":    "OtoOutput.Open",
			"sample_rate": rate,
			"channels":    channels,
		}).Info("Sound device opened")
	} else if rate != o.rate || channels != o.channels {
		return fmt.Errorf("%w: device runs %d Hz/%d ch, requested %d Hz/%d ch",
			ErrOutputFormat, o.rate, o.channels, rate, channels)
	}

	o.closePlayerLocked()
	o.pr, o.pw = io.Pipe()
	o.player = o.ctx.NewPlayer(o.pr)
	o.player.Play()
	return nil
}

// Write blocks until the device has taken the samples.
func (o *OtoOutput) Write(samples []float32) error {
	o.mu.Lock()
	pw := o.pw
	if pw == nil {
		o.mu.Unlock()
		return ErrOutputClosed
	}
	need := len(samples) * 4
	if cap(o.buf) < need {
		o.buf = make([]byte, need)
	}
	buf := o.buf[:need]
	for i, v := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	o.mu.Unlock()

	if _, err := pw.Write(buf); err != nil {
		return ErrOutputClosed
	}
	return nil
}

// Drain waits until everything written has been played.
func (o *OtoOutput) Drain(ctx context.Context) error {
	o.mu.Lock()
	pw, player := o.pw, o.player
	o.mu.Unlock()
	if pw == nil || player == nil {
		return nil
	}

	pw.Close()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Stop silences the device at once and fails pending writes.
func (o *OtoOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closePlayerLocked()
}

func (o *OtoOutput) closePlayerLocked() {
	if o.pr != nil {
		o.pr.CloseWithError(ErrOutputClosed)
		o.pr, o.pw = nil, nil
	}
	if o.player != nil {
		o.player.Pause()
		if err := o.player.Close(); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "OtoOutput.Stop",
				"error":    err.Error(),
			}).Warn("Closing player failed")
		}
		o.player = nil
	}
}
