package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// PlayerOptions configures the output format and buffering of a Player.
type PlayerOptions struct {
	SampleRate   int
	Channels     int
	BufferFrames int
}

// DefaultPlayerOptions returns CD-quality stereo with 1024-frame buffers.
func DefaultPlayerOptions() PlayerOptions {
	return PlayerOptions{
		SampleRate:   44100,
		Channels:     2,
		BufferFrames: 1024,
	}
}

// PlayerStatus is a snapshot of the transport.
type PlayerStatus struct {
	Playing  bool
	Index    int
	Track    string
	Position time.Duration
	Length   time.Duration
	Err      error
}

// Player plays a playlist of WAV files through an EffectChain into an Output.
//
// Play and Stop must be called from the main context. Decoding, effect hooks
// and output writes run on one pipeline goroutine per Play.
type Player struct {
	chain *EffectChain
	out   Output
	opts  PlayerOptions
	load  func(path string) (*Track, error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	status PlayerStatus
}

// NewPlayer creates a stopped player.
func NewPlayer(chain *EffectChain, out Output, opts PlayerOptions) *Player {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultPlayerOptions().SampleRate
	}
	if opts.Channels <= 0 {
		opts.Channels = DefaultPlayerOptions().Channels
	}
	if opts.BufferFrames <= 0 {
		opts.BufferFrames = DefaultPlayerOptions().BufferFrames
	}

	done := make(chan struct{})
	close(done)
	return &Player{
		chain: chain,
		out:   out,
		opts:  opts,
		load:  LoadWAV,
		done:  done,
	}
}

// Play stops whatever is playing and starts the playlist from the first track.
func (p *Player) Play(playlist []string) error {
	if len(playlist) == 0 {
		return ErrEmptyPlaylist
	}
	p.Stop()

	if err := p.out.Open(p.opts.SampleRate, p.opts.Channels); err != nil {
		return fmt.Errorf("open output: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.status = PlayerStatus{Playing: true}
	p.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function": "Player.Play",
		"tracks":   len(playlist),
	}).Info("Playback started")

	go p.run(ctx, append([]string(nil), playlist...), done)
	return nil
}

// Stop ends playback and waits for the pipeline goroutine to finish. The
// current stream gets its Finish hook. Stopping a stopped player does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	p.out.Stop()
	<-done

	logrus.WithFields(logrus.Fields{
		"function": "Player.Stop",
	}).Info("Playback stopped")
}

// Playing reports whether the pipeline goroutine is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status.Playing
}

// Status returns a snapshot of the transport.
func (p *Player) Status() PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Done returns a channel that is closed when the current playback ends.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *Player) run(ctx context.Context, playlist []string, done chan struct{}) {
	var runErr error
	defer func() {
		p.mu.Lock()
		p.status.Playing = false
		p.status.Err = runErr
		p.mu.Unlock()
		close(done)
	}()

	for i, path := range playlist {
		if ctx.Err() != nil {
			return
		}

		track, err := p.prepare(path)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Player.run",
				"path":     path,
				"error":    err.Error(),
			}).Error("Skipping unplayable track")
			runErr = err
			continue
		}

		p.mu.Lock()
		p.status.Index = i
		p.status.Track = path
		p.status.Position = 0
		p.status.Length = track.Duration()
		p.mu.Unlock()

		last := i == len(playlist)-1
		if !p.stream(ctx, track, last) {
			return
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.out.Drain(drainCtx); err != nil && !errors.Is(err, context.Canceled) {
		logrus.WithFields(logrus.Fields{
			"function": "Player.run",
			"error":    err.Error(),
		}).Warn("Output drain incomplete")
	}

	logrus.WithFields(logrus.Fields{
		"function": "Player.run",
	}).Info("Playlist finished")
}

func (p *Player) prepare(path string) (*Track, error) {
	track, err := p.load(path)
	if err != nil {
		return nil, err
	}
	return track.Convert(p.opts.SampleRate, p.opts.Channels)
}

// stream feeds one track through the effect chain. The final buffer goes
// through Finish instead of Process. It returns false when playback was
// stopped.
func (p *Player) stream(ctx context.Context, track *Track, endOfPlaylist bool) bool {
	channels := track.Channels
	p.chain.Start(channels, track.SampleRate)

	step := p.opts.BufferFrames * channels
	buf := make([]float32, step)
	total := len(track.Samples)

	for offset := 0; offset < total; offset += step {
		if ctx.Err() != nil {
			p.chain.Finish(nil, true)
			return false
		}

		end := offset + step
		if end > total {
			end = total
		}
		chunk := buf[:end-offset]
		copy(chunk, track.Samples[offset:end])

		var out []float32
		if end == total {
			out = p.chain.Finish(chunk, endOfPlaylist)
		} else {
			out = p.chain.Process(chunk)
		}

		if err := p.out.Write(out); err != nil {
			p.chain.Finish(nil, true)
			return false
		}

		p.mu.Lock()
		p.status.Position = time.Duration(end/channels) * time.Second / time.Duration(track.SampleRate)
		p.mu.Unlock()

		if end == total {
			return true
		}
	}

	// Empty track: the stream still ends.
	p.chain.Finish(nil, endOfPlaylist)
	return true
}
