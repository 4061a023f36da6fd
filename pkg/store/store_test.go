package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/spectrowave/pkg/config"
)

func newTestStore(t *testing.T) *SettingsStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSavePresetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	settings := config.DefaultSettings()
	settings.DftSize = 2048
	require.NoError(t, s.SavePreset("loud-heat", settings))

	loaded, err := s.LoadPreset("loud-heat")
	require.NoError(t, err)
	assert.Equal(t, uint32(2048), loaded.DftSize)
}

func TestSavePresetOverwrites(t *testing.T) {
	s := newTestStore(t)

	settings := config.DefaultSettings()
	require.NoError(t, s.SavePreset("preset", settings))

	settings.ColorScheme = config.ColorBlue
	require.NoError(t, s.SavePreset("preset", settings))

	loaded, err := s.LoadPreset("preset")
	require.NoError(t, err)
	assert.Equal(t, config.ColorBlue, loaded.ColorScheme)
}

func TestLoadMissingPreset(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadPreset("nonexistent")
	assert.Error(t, err)
}

func TestListPresets(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SavePreset("a", config.DefaultSettings()))
	require.NoError(t, s.SavePreset("b", config.DefaultSettings()))

	names, err := s.ListPresets()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestRunLifecycle(t *testing.T) {
	s := newTestStore(t)

	start := time.Now().Truncate(time.Second)
	id, err := s.BeginRun(start)
	require.NoError(t, err)
	assert.NotZero(t, id)

	end := start.Add(time.Minute)
	require.NoError(t, s.EndRun(id, end, 1000, 3))

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, uint64(1000), runs[0].FramesProcessed)
	assert.Equal(t, uint64(3), runs[0].Overruns)
}
