// Package settings implements the reference host's persisted settings store:
// string values addressed by section and key, saved as a YAML document.
//
// Defaults registered by plugins are kept apart from user values and are
// never written to disk, so changing a plugin default later takes effect for
// users who never touched the setting.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNoPath indicates Save was called on a store without a backing file.
var ErrNoPath = errors.New("settings store has no file path")

// Store is a concurrency-safe section/key/value store.
type Store struct {
	mu       sync.RWMutex
	path     string
	values   map[string]map[string]string
	defaults map[string]map[string]string
	dirty    bool
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		values:   make(map[string]map[string]string),
		defaults: make(map[string]map[string]string),
	}
}

// Load reads the store from path. A missing file yields an empty store that
// will be created on Save.
func Load(path string) (*Store, error) {
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		logrus.WithFields(logrus.Fields{
			"function": "Load",
			"path":     path,
		}).Debug("Settings file does not exist, starting empty")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &s.values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if s.values == nil {
		s.values = make(map[string]map[string]string)
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"path":     path,
		"sections": len(s.values),
	}).Info("Settings loaded")

	return s, nil
}

// Path returns the backing file, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// SetDefaults registers default values for section. Existing defaults for the
// same keys are replaced; user values are left alone.
func (s *Store) SetDefaults(section string, defaults map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.defaults[section] == nil {
		s.defaults[section] = make(map[string]string, len(defaults))
	}
	for k, v := range defaults {
		s.defaults[section][k] = v
	}
}

// Get returns the user value of section/key, falling back to its default.
func (s *Store) Get(section, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if v, ok := s.values[section][key]; ok {
		return v, true
	}
	v, ok := s.defaults[section][key]
	return v, ok
}

// Set stores a user value.
func (s *Store) Set(section, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.values[section] == nil {
		s.values[section] = make(map[string]string)
	}
	if old, ok := s.values[section][key]; ok && old == value {
		return
	}
	s.values[section][key] = value
	s.dirty = true
}

// GetDouble returns section/key parsed as a float. Missing or unparseable
// values yield 0.
func (s *Store) GetDouble(section, key string) float64 {
	v, ok := s.Get(section, key)
	if !ok {
		return 0
	}
	d, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Store.GetDouble",
			"section":  section,
			"key":      key,
			"value":    v,
		}).Warn("Setting is not a number")
		return 0
	}
	return d
}

// SetDouble stores value in its shortest exact decimal form.
func (s *Store) SetDouble(section, key string, value float64) {
	s.Set(section, key, strconv.FormatFloat(value, 'f', -1, 64))
}

// Dirty reports whether there are unsaved changes.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Save writes the user values to the backing file. The file is replaced
// atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return ErrNoPath
	}

	data, err := yaml.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("create temporary settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace settings %s: %w", s.path, err)
	}
	s.dirty = false

	logrus.WithFields(logrus.Fields{
		"function": "Store.Save",
		"path":     s.path,
	}).Info("Settings saved")

	return nil
}
