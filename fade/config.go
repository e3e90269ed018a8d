package fade

import (
	"fmt"
	"time"
)

const (
	// SettingsSection is the section name of the plugin in the host settings store.
	SettingsSection = "fadeout_plugin"

	// SettingsKeyDuration is the settings key holding the fade duration in seconds.
	SettingsKeyDuration = "duration"

	// DefaultMaxReduction is the gain reduction treated as silence.
	DefaultMaxReduction = 200

	// DefaultStepInterval is the nominal time between two ramp steps.
	DefaultStepInterval = 10 * time.Millisecond

	// MinDuration and MaxDuration bound the configurable fade duration.
	MinDuration = 1 * time.Second
	MaxDuration = 10 * time.Second

	// DefaultDuration is used when the settings store holds no usable value.
	DefaultDuration = 4 * time.Second
)

// Config holds the tuning of the fade ramp.
type Config struct {
	// MaxReduction is the silence threshold. A session ends once the gain
	// reduction reaches it.
	MaxReduction float64

	// StepInterval is the nominal cadence of the ramp loop.
	StepInterval time.Duration

	// MinDuration and MaxDuration clamp the duration read from settings.
	MinDuration time.Duration
	MaxDuration time.Duration

	// DefaultDuration is registered as the settings default.
	DefaultDuration time.Duration

	// TimeProvider drives the ramp loop. Nil means the system clock.
	TimeProvider TimeProvider
}

// DefaultConfig returns a Config with the standard fade parameters.
func DefaultConfig() *Config {
	return &Config{
		MaxReduction:    DefaultMaxReduction,
		StepInterval:    DefaultStepInterval,
		MinDuration:     MinDuration,
		MaxDuration:     MaxDuration,
		DefaultDuration: DefaultDuration,
	}
}

// Validate reports whether the configuration can drive a ramp.
func (c *Config) Validate() error {
	if c.MaxReduction <= 1 {
		return fmt.Errorf("max reduction must be greater than 1: %f", c.MaxReduction)
	}
	if c.StepInterval <= 0 {
		return fmt.Errorf("step interval must be positive: %v", c.StepInterval)
	}
	if c.MinDuration < c.StepInterval {
		return fmt.Errorf("%w: minimum %v shorter than one step", ErrInvalidDuration, c.MinDuration)
	}
	if c.MaxDuration < c.MinDuration {
		return fmt.Errorf("%w: maximum %v below minimum %v", ErrInvalidDuration, c.MaxDuration, c.MinDuration)
	}
	if c.DefaultDuration < c.MinDuration || c.DefaultDuration > c.MaxDuration {
		return fmt.Errorf("%w: default %v outside [%v, %v]", ErrInvalidDuration,
			c.DefaultDuration, c.MinDuration, c.MaxDuration)
	}
	return nil
}
