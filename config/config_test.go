package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
controller:
  max_floor: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2000*time.Millisecond, cfg.Controller.TravelTimePerFloor)
	assert.Equal(t, 5000*time.Millisecond, cfg.Controller.DoorOpenTime)
	assert.Equal(t, 10000*time.Millisecond, cfg.Controller.EstimationLimit)
	assert.True(t, cfg.Controller.FreeFirst())
	assert.Equal(t, 3, cfg.Controller.NrOfElevators)
	assert.Equal(t, "stopEnRoute", cfg.Controller.Strategy)
	assert.False(t, cfg.Controller.Debug())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Journal.Driver)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 30*time.Second, cfg.Health.Interval)
}

func TestLoadParsesValues(t *testing.T) {
	path := writeConfig(t, `
controller:
  travel_time_per_floor_ms: 100
  door_open_time_ms: 200
  estimation_limit_ms: 400
  use_free_first: false
  min_floor: -2
  max_floor: 8
  nr_of_elevators: 5
  initial_floor: -1
  strategy: insertOrder
  log_level: debug
server:
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Controller.TravelTimePerFloor)
	assert.False(t, cfg.Controller.FreeFirst())
	assert.Equal(t, -2, cfg.Controller.MinFloor)
	assert.Equal(t, -1, cfg.Controller.InitialFloor)
	assert.Equal(t, 5, cfg.Controller.NrOfElevators)
	assert.Equal(t, "insertOrder", cfg.Controller.Strategy)
	assert.True(t, cfg.Controller.Debug())
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadRejectsBadFloorBounds(t *testing.T) {
	_, err := Load(writeConfig(t, `
controller:
  min_floor: 5
  max_floor: 2
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
controller:
  min_floor: 0
  max_floor: 10
  initial_floor: 11
`))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0, cfg.Controller.MinFloor)
	assert.Equal(t, 20, cfg.Controller.MaxFloor)
	assert.Equal(t, 3, cfg.Controller.NrOfElevators)
}
