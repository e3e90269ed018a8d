//go:build headless

package host

// DefaultOutput returns a real-time paced null output for builds without a
// sound device.
func DefaultOutput() Output {
	return NewNullOutput(true)
}
