package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTuningOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("move_speed: 8\nmax_spawned: 3\nspawn_interval_min: 12\n"), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)

	assert.Equal(t, 8.0, tuning.MoveSpeed)
	assert.Equal(t, 3, tuning.MaxSpawned)
	assert.Equal(t, 12.0, tuning.SpawnIntervalMin)
	assert.Equal(t, 17.0, tuning.SpawnIntervalMax)
	assert.Equal(t, DefaultTuning().Gravity, tuning.Gravity)
	assert.Equal(t, DefaultTuning().InteractRange, tuning.InteractRange)
}

func TestLoadTuningErrors(t *testing.T) {
	_, err := LoadTuning(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("move_speed: [fast"), 0o644))
	_, err = LoadTuning(path)
	assert.Error(t, err)
}

func TestLoadTuningKeepsExplicitZeroGround(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ground_y: 0\n"), 0o644))

	tuning, err := LoadTuning(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tuning.Ground())
	assert.Equal(t, 1.0, DefaultTuning().Ground())

	m := NewMovementResolver(tuning)
	p := testPlayer()
	for i := 0; i < 300; i++ {
		m.Step(p, tickDt)
	}
	assert.Equal(t, 0.0, p.Position.Y)
}
