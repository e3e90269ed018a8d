package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_DefaultsAndValues(t *testing.T) {
	s := New()

	_, ok := s.Get("fadeout_plugin", "duration")
	assert.False(t, ok)
	assert.Equal(t, 0.0, s.GetDouble("fadeout_plugin", "duration"))

	s.SetDefaults("fadeout_plugin", map[string]string{"duration": "4"})
	assert.Equal(t, 4.0, s.GetDouble("fadeout_plugin", "duration"))
	assert.False(t, s.Dirty(), "defaults are not user changes")

	s.SetDouble("fadeout_plugin", "duration", 6.5)
	assert.Equal(t, 6.5, s.GetDouble("fadeout_plugin", "duration"))
	assert.True(t, s.Dirty())

	s.SetDefaults("fadeout_plugin", map[string]string{"duration": "5"})
	assert.Equal(t, 6.5, s.GetDouble("fadeout_plugin", "duration"), "defaults never override user values")
}

func TestStore_GetDoubleUnparseable(t *testing.T) {
	s := New()
	s.Set("fadeout_plugin", "duration", "soon")
	assert.Equal(t, 0.0, s.GetDouble("fadeout_plugin", "duration"))
}

func TestStore_SaveWithoutPath(t *testing.T) {
	assert.ErrorIs(t, New().Save(), ErrNoPath)
}

func TestStore_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	s.SetDefaults("fadeout_plugin", map[string]string{"duration": "4", "unused": "x"})
	s.SetDouble("fadeout_plugin", "duration", 7.3)
	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "fadeout_plugin:")
	assert.Contains(t, string(data), "duration: \"7.3\"")
	assert.NotContains(t, string(data), "unused", "defaults are not persisted")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7.3, loaded.GetDouble("fadeout_plugin", "duration"))
}

func TestStore_LoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fadeout_plugin: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	s.Set("a", "b", "c")
	v, ok := s.Get("a", "b")
	assert.True(t, ok)
	assert.Equal(t, "c", v)
}
