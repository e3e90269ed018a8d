package host

import "errors"

// Sentinel errors for host operations.
var (
	// ErrInvalidWAV indicates a file that is not a decodable WAV stream.
	ErrInvalidWAV = errors.New("invalid wav file")

	// ErrUnsupportedChannels indicates a channel layout the host cannot map.
	ErrUnsupportedChannels = errors.New("unsupported channel count")

	// ErrEmptyPlaylist indicates Play was called without tracks.
	ErrEmptyPlaylist = errors.New("empty playlist")

	// ErrOutputFormat indicates the output device cannot change format once opened.
	ErrOutputFormat = errors.New("output format cannot change")

	// ErrOutputClosed indicates a write to a stopped output.
	ErrOutputClosed = errors.New("output closed")
)
