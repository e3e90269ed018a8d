package host

import (
	"fmt"
	"os"
	"time"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/sirupsen/logrus"
)

// Track is a decoded audio file held in memory as interleaved float32 samples.
type Track struct {
	Path       string
	Channels   int
	SampleRate int
	Samples    []float32
}

// Frames returns the number of sample frames.
func (t *Track) Frames() int {
	if t.Channels <= 0 {
		return 0
	}
	return len(t.Samples) / t.Channels
}

// Duration returns the playing time of the track.
func (t *Track) Duration() time.Duration {
	if t.SampleRate <= 0 {
		return 0
	}
	return time.Duration(t.Frames()) * time.Second / time.Duration(t.SampleRate)
}

// LoadWAV decodes a WAV file.
func LoadWAV(path string) (*Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("%w: no format in %s", ErrInvalidWAV, path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d in %s", ErrInvalidWAV, buf.Format.SampleRate, path)
	}

	track := &Track{
		Path:       path,
		Channels:   buf.Format.NumChannels,
		SampleRate: buf.Format.SampleRate,
		Samples:    buf.Data,
	}

	logrus.WithFields(logrus.Fields{
		"function":    "LoadWAV",
		"path":        path,
		"channels":    track.Channels,
		"sample_rate": track.SampleRate,
		"duration":    track.Duration(),
	}).Info("Track decoded")

	return track, nil
}

// Convert returns the track remapped to channels and resampled to rate. The
// receiver is returned unchanged when it already matches.
func (t *Track) Convert(rate, channels int) (*Track, error) {
	if channels < 1 || channels > 2 {
		return nil, fmt.Errorf("%w: output %d", ErrUnsupportedChannels, channels)
	}
	if t.Channels == channels && t.SampleRate == rate {
		return t, nil
	}

	planes := t.remap(channels)
	if t.SampleRate != rate {
		var err error
		planes, err = resamplePlanes(planes, t.SampleRate, rate)
		if err != nil {
			return nil, fmt.Errorf("resample %s: %w", t.Path, err)
		}
	}

	frames := len(planes[0])
	for _, p := range planes[1:] {
		if len(p) < frames {
			frames = len(p)
		}
	}
	out := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			out[i*channels+c] = float32(planes[c][i])
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":      "Track.Convert",
		"path":          t.Path,
		"from_rate":     t.SampleRate,
		"to_rate":       rate,
		"from_channels": t.Channels,
		"to_channels":   channels,
	}).Debug("Track converted to output format")

	return &Track{
		Path:       t.Path,
		Channels:   channels,
		SampleRate: rate,
		Samples:    out,
	}, nil
}

// remap splits the interleaved samples into one plane per output channel.
// Mono output averages all input channels; stereo output duplicates mono
// input and keeps the first two channels of wider input.
func (t *Track) remap(channels int) [][]float64 {
	frames := t.Frames()
	planes := make([][]float64, channels)
	for c := range planes {
		planes[c] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		frame := t.Samples[i*t.Channels : (i+1)*t.Channels]
		switch {
		case channels == 1:
			var sum float64
			for _, v := range frame {
				sum += float64(v)
			}
			planes[0][i] = sum / float64(t.Channels)
		case t.Channels == 1:
			planes[0][i] = float64(frame[0])
			planes[1][i] = float64(frame[0])
		default:
			planes[0][i] = float64(frame[0])
			planes[1][i] = float64(frame[1])
		}
	}
	return planes
}

func resamplePlanes(planes [][]float64, from, to int) ([][]float64, error) {
	out := make([][]float64, len(planes))
	for c, plane := range planes {
		r, err := dspresample.NewForRates(
			float64(from),
			float64(to),
			dspresample.WithQuality(dspresample.QualityBalanced),
		)
		if err != nil {
			return nil, err
		}
		out[c] = r.Process(plane)
	}
	return out, nil
}
