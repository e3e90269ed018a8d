package host

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
	"github.com/stretchr/testify/require"
)

// finishCall records one Finish hook invocation.
type finishCall struct {
	samples       int
	endOfPlaylist bool
}

// recordingEffect counts hook calls and optionally scales samples.
type recordingEffect struct {
	name  string
	scale float32
	trace *[]string

	mu       sync.Mutex
	starts   int
	channels int
	rate     int
	buffers  int
	flushes  int
	finishes []finishCall
}

func (e *recordingEffect) Name() string { return e.name }

func (e *recordingEffect) Start(channels, rate int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	e.channels = channels
	e.rate = rate
}

func (e *recordingEffect) Process(samples []float32) []float32 {
	e.mu.Lock()
	e.buffers++
	if e.trace != nil {
		*e.trace = append(*e.trace, e.name)
	}
	e.mu.Unlock()

	if e.scale != 0 {
		for i := range samples {
			samples[i] *= e.scale
		}
	}
	return samples
}

func (e *recordingEffect) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushes++
}

func (e *recordingEffect) Finish(samples []float32, endOfPlaylist bool) []float32 {
	samples = e.Process(samples)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.finishes = append(e.finishes, finishCall{samples: len(samples), endOfPlaylist: endOfPlaylist})
	return samples
}

func (e *recordingEffect) Finishes() []finishCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]finishCall(nil), e.finishes...)
}

func (e *recordingEffect) Starts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.starts
}

// constantTrack returns a track holding frames frames of value on every channel.
func constantTrack(path string, channels, rate, frames int, value float32) *Track {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}
	return &Track{Path: path, Channels: channels, SampleRate: rate, Samples: samples}
}

// writeTestWAV writes interleaved samples as a 16-bit PCM WAV file.
func writeTestWAV(t *testing.T, name string, rate, channels int, data []float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  rate,
			NumChannels: channels,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	return path
}
