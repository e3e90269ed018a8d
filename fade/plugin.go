package fade

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/sirupsen/logrus"
)

// Plugin is the FadeOut effect plugin.
//
// The host calls Init and Cleanup on its main context, Start, Process, Flush
// and Finish on its audio path, and the registered menu action (FadeOut) on
// its main context again.
type Plugin struct {
	cfg   *Config
	state *State

	// host is read from the audio path and the session goroutine without locking.
	host        atomic.Pointer[Host]
	stopPending atomic.Bool

	mu          sync.Mutex
	ctrl        *Controller
	menuID      MenuItemID
	initialized bool
}

// Status is a snapshot of the plugin for display.
type Status struct {
	Initialized   bool
	Active        bool
	Processing    bool
	GainReduction float64
	// AttenuationDB is the current attenuation in decibels, 0 when inactive.
	AttenuationDB float64
	Duration      time.Duration
}

// New creates an uninitialized plugin. A nil cfg selects DefaultConfig.
func New(cfg *Config) *Plugin {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Plugin{
		cfg:   cfg,
		state: NewState(),
	}
}

// Info returns the plugin metadata.
func (p *Plugin) Info() Info {
	return pluginInfo
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return pluginInfo.Name
}

// Preferences describes the plugin's preferences page.
func (p *Plugin) Preferences() []Widget {
	return []Widget{
		{Kind: WidgetLabel, Label: "Fade out"},
		{
			Kind:    WidgetSpinFloat,
			Label:   "Duration:",
			Section: SettingsSection,
			Key:     SettingsKeyDuration,
			Min:     p.cfg.MinDuration.Seconds(),
			Max:     p.cfg.MaxDuration.Seconds(),
			Step:    0.1,
			Unit:    "seconds",
		},
	}
}

// Init binds the plugin to its host: it registers the settings defaults and
// the "Fade out" menu item.
func (p *Plugin) Init(host Host) error {
	logrus.WithFields(logrus.Fields{
		"function": "Plugin.Init",
		"plugin":   pluginInfo.Name,
	}).Info("Initializing plugin")

	if err := p.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid fade config: %w", err)
	}
	if err := host.validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return ErrAlreadyInitialized
	}

	host.Settings.SetDefaults(SettingsSection, map[string]string{
		SettingsKeyDuration: strconv.FormatFloat(p.cfg.DefaultDuration.Seconds(), 'f', -1, 64),
	})

	p.state.Reset()
	p.stopPending.Store(false)
	p.ctrl = NewController(p.state, p.cfg, p.requestStop)
	p.host.Store(&host)
	p.menuID = host.Menu.AddItem(MenuLabel, p.FadeOut)
	p.initialized = true

	logrus.WithFields(logrus.Fields{
		"function": "Plugin.Init",
		"plugin":   pluginInfo.Name,
		"duration": p.Duration(),
	}).Info("Plugin initialized")

	return nil
}

// Cleanup unbinds the plugin from its host. Any fade in flight is cut off:
// the State is reset unconditionally and the session goroutine has exited
// when Cleanup returns. Calling Cleanup on an uninitialized plugin does nothing.
func (p *Plugin) Cleanup() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	p.state.Reset()
	if h := p.host.Swap(nil); h != nil {
		h.Menu.RemoveItem(p.menuID)
	}
	p.ctrl.Close()
	p.stopPending.Store(false)
	p.initialized = false

	logrus.WithFields(logrus.Fields{
		"function": "Plugin.Cleanup",
		"plugin":   pluginInfo.Name,
	}).Info("Plugin cleaned up")
}

// FadeOut is the menu action. It starts a fade when the effect is processing
// audio and no fade is active; otherwise it does nothing. A session that
// cannot be started is reported as a warning and dropped.
func (p *Plugin) FadeOut() {
	err := p.StartFade()
	switch {
	case err == nil:
	case errors.Is(err, ErrNotProcessing),
		errors.Is(err, ErrFadeActive),
		errors.Is(err, ErrNotInitialized):
		logrus.WithFields(logrus.Fields{
			"function": "Plugin.FadeOut",
			"reason":   err.Error(),
		}).Debug("Fade out request ignored")
	default:
		logrus.WithFields(logrus.Fields{
			"function": "Plugin.FadeOut",
			"error":    err.Error(),
		}).Warn("Could not create the task for fading out")
	}
}

// StartFade starts a fade with the configured duration and reports why it
// did not when it does not.
func (p *Plugin) StartFade() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return ErrNotInitialized
	}
	return p.ctrl.Start(p.Duration())
}

// Wait blocks until the current fade session goroutine, if any, has returned.
func (p *Plugin) Wait() {
	p.mu.Lock()
	ctrl := p.ctrl
	p.mu.Unlock()

	if ctrl != nil {
		ctrl.Wait()
	}
}

// Duration returns the configured fade duration, clamped to the configured
// bounds. Without a host it returns the default duration.
func (p *Plugin) Duration() time.Duration {
	h := p.host.Load()
	if h == nil {
		return p.cfg.DefaultDuration
	}
	return p.clampDuration(h.Settings.GetDouble(SettingsSection, SettingsKeyDuration))
}

// SetDuration validates, clamps and persists the fade duration in seconds. It
// returns the duration that was stored.
func (p *Plugin) SetDuration(seconds float64) (time.Duration, error) {
	h := p.host.Load()
	if h == nil {
		return 0, ErrNotInitialized
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		return 0, fmt.Errorf("%w: %v seconds", ErrInvalidDuration, seconds)
	}

	d := p.clampDuration(seconds)
	h.Settings.SetDouble(SettingsSection, SettingsKeyDuration, d.Seconds())

	logrus.WithFields(logrus.Fields{
		"function": "Plugin.SetDuration",
		"duration": d,
	}).Info("Fade duration updated")

	return d, nil
}

// clampDuration converts seconds to a duration within the configured bounds.
func (p *Plugin) clampDuration(seconds float64) time.Duration {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 {
		logrus.WithFields(logrus.Fields{
			"function": "Plugin.clampDuration",
			"seconds":  seconds,
			"default":  p.cfg.DefaultDuration,
		}).Warn("Unusable fade duration, using default")
		return p.cfg.DefaultDuration
	}

	clamped := core.Clamp(seconds, p.cfg.MinDuration.Seconds(), p.cfg.MaxDuration.Seconds())
	if clamped != seconds {
		logrus.WithFields(logrus.Fields{
			"function": "Plugin.clampDuration",
			"seconds":  seconds,
			"clamped":  clamped,
		}).Warn("Fade duration out of range, clamping")
	}
	return time.Duration(math.Round(clamped * float64(time.Second)))
}

// Status returns a snapshot of the plugin state.
func (p *Plugin) Status() Status {
	p.mu.Lock()
	initialized := p.initialized
	p.mu.Unlock()

	gain := p.state.GainReduction()
	return Status{
		Initialized:   initialized,
		Active:        gain != Inactive,
		Processing:    p.state.Processing(),
		GainReduction: gain,
		AttenuationDB: core.LinearToDB(gain),
		Duration:      p.Duration(),
	}
}

// Start is the stream start hook. The gain reduction is left untouched so a
// fade carries over into the next track.
func (p *Plugin) Start(channels, rate int) {
	p.state.SetProcessing(true)
}

// Process divides every sample by the current gain reduction, in place.
// While no fade is active the buffer is returned untouched.
func (p *Plugin) Process(samples []float32) []float32 {
	gain := p.state.GainReduction()
	if gain == Inactive {
		return samples
	}
	for i := range samples {
		samples[i] = float32(float64(samples[i]) / gain)
	}
	return samples
}

// Flush is the seek hook. Seeking does not affect a fade.
func (p *Plugin) Flush() {}

// Finish is the stream end hook. The tail is attenuated like any other
// buffer; if a fade is active, playback is stopped so the next track does not
// start at full volume.
func (p *Plugin) Finish(samples []float32, endOfPlaylist bool) []float32 {
	samples = p.Process(samples)
	if p.state.Active() {
		p.requestStop()
	}
	p.state.SetProcessing(false)
	return samples
}

// requestStop hands the stop over to the host's main context. It is called
// from the audio path and the session goroutine, so it neither locks nor
// logs. At most one stop is pending at a time.
func (p *Plugin) requestStop() {
	h := p.host.Load()
	if h == nil {
		p.state.Reset()
		return
	}
	if !p.stopPending.CompareAndSwap(false, true) {
		return
	}
	h.Main.Post(func() {
		p.stopPlaybackAndFading(h)
	})
}

// stopPlaybackAndFading runs on the main context. The State is reset after
// the stop so no buffer is played back at full volume in between. A stop
// queued before Cleanup is dropped.
func (p *Plugin) stopPlaybackAndFading(h *Host) {
	if p.host.Load() != h {
		return
	}

	h.Playback.Stop()
	p.state.Reset()
	p.stopPending.Store(false)

	logrus.WithFields(logrus.Fields{
		"function": "Plugin.stopPlaybackAndFading",
	}).Info("Playback stopped after fade")
}
