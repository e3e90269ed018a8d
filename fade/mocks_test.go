package fade

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// MockTimeProvider is a deterministic TimeProvider. Every timer fires at once
// and advances the mock clock by the requested duration plus Overshoot, which
// simulates a scheduler that oversleeps.
type MockTimeProvider struct {
	mu          sync.Mutex
	currentTime time.Time
	overshoot   time.Duration
	waits       []time.Duration
}

func NewMockTimeProvider() *MockTimeProvider {
	return &MockTimeProvider{
		currentTime: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Now returns the mock time.
func (m *MockTimeProvider) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// NewTimer records the wait, advances the clock and returns a timer that has
// already fired.
func (m *MockTimeProvider) NewTimer(d time.Duration) *time.Timer {
	m.mu.Lock()
	m.waits = append(m.waits, d)
	m.currentTime = m.currentTime.Add(d + m.overshoot)
	m.mu.Unlock()
	return time.NewTimer(0)
}

// SetOvershoot makes every timer oversleep by d.
func (m *MockTimeProvider) SetOvershoot(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overshoot = d
}

// Advance advances the mock time by the specified duration.
func (m *MockTimeProvider) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}

// Waits returns every duration passed to NewTimer so far.
func (m *MockTimeProvider) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.waits...)
}

// stuckTimeProvider hands out timers that never fire during a test, so a
// session goroutine stays parked until its controller is closed.
type stuckTimeProvider struct{}

func (stuckTimeProvider) Now() time.Time { return time.Now() }

func (stuckTimeProvider) NewTimer(time.Duration) *time.Timer { return time.NewTimer(time.Hour) }

// fakeMain queues posted callbacks until RunPending is called.
type fakeMain struct {
	mu    sync.Mutex
	queue []func()
	posts int
}

func (f *fakeMain) Post(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
	f.posts++
}

func (f *fakeMain) RunPending() int {
	f.mu.Lock()
	queue := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

func (f *fakeMain) Posts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posts
}

type fakePlayback struct {
	stops atomic.Int32
}

func (f *fakePlayback) Stop() {
	f.stops.Add(1)
}

type fakeSettings struct {
	mu       sync.Mutex
	defaults map[string]map[string]string
	values   map[string]map[string]string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{
		defaults: make(map[string]map[string]string),
		values:   make(map[string]map[string]string),
	}
}

func (f *fakeSettings) SetDefaults(section string, defaults map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.defaults[section] == nil {
		f.defaults[section] = make(map[string]string)
	}
	for k, v := range defaults {
		f.defaults[section][k] = v
	}
}

func (f *fakeSettings) set(section, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values[section] == nil {
		f.values[section] = make(map[string]string)
	}
	f.values[section][key] = value
}

func (f *fakeSettings) get(section, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[section][key]; ok {
		return v, true
	}
	v, ok := f.defaults[section][key]
	return v, ok
}

func (f *fakeSettings) GetDouble(section, key string) float64 {
	v, ok := f.get(section, key)
	if !ok {
		return 0
	}
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return d
}

func (f *fakeSettings) SetDouble(section, key string, value float64) {
	f.set(section, key, strconv.FormatFloat(value, 'f', -1, 64))
}

type fakeMenuItem struct {
	label    string
	activate func()
}

type fakeMenu struct {
	mu      sync.Mutex
	next    MenuItemID
	items   map[MenuItemID]fakeMenuItem
	removed []MenuItemID
}

func newFakeMenu() *fakeMenu {
	return &fakeMenu{items: make(map[MenuItemID]fakeMenuItem)}
}

func (f *fakeMenu) AddItem(label string, activate func()) MenuItemID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	f.items[f.next] = fakeMenuItem{label: label, activate: activate}
	return f.next
}

func (f *fakeMenu) RemoveItem(id MenuItemID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	f.removed = append(f.removed, id)
}

// Activate fires the item with the given label and reports whether it exists.
func (f *fakeMenu) Activate(label string) bool {
	f.mu.Lock()
	var activate func()
	for _, item := range f.items {
		if item.label == label {
			activate = item.activate
		}
	}
	f.mu.Unlock()

	if activate == nil {
		return false
	}
	activate()
	return true
}

func (f *fakeMenu) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type testHost struct {
	main     *fakeMain
	playback *fakePlayback
	settings *fakeSettings
	menu     *fakeMenu
}

func newTestHost() *testHost {
	return &testHost{
		main:     &fakeMain{},
		playback: &fakePlayback{},
		settings: newFakeSettings(),
		menu:     newFakeMenu(),
	}
}

func (h *testHost) Host() Host {
	return Host{
		Main:     h.main,
		Playback: h.playback,
		Settings: h.settings,
		Menu:     h.menu,
	}
}

// waitTimeout runs fn and fails the test if it does not return within timeout.
func waitTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatalf("did not return within %v", timeout)
	}
}
