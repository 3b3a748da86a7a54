package coupler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfig(t *testing.T) {
	base := writeConfig(t, `
logging:
  level: debug
  format: json
units:
  metric_tables:
    - tables/extra.csv
resample:
  interpolation: linear
  extrapolation: constant
`)
	overlay := writeConfig(t, `
resample:
  extrapolation: linear
run:
  start: 1850
  stop: 2100
`)

	cfg, err := LoadConfig(base)
	require.NoError(t, err)
	require.NoError(t, MergeConfig(cfg, overlay))
	require.NoError(t, cfg.Validate())

	// Overlay sections replace, untouched sections survive.
	assert.Equal(t, "linear", cfg.Resample.Extrapolation)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"tables/extra.csv"}, cfg.Units.MetricTables)
	assert.Equal(t, time.Date(1850, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Run.Start.Time)
	assert.Equal(t, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), cfg.Run.Stop.Time)
}

func TestMergeConfigReplacesWholeSection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Resample.Interpolation = "linear"
	cfg.Resample.Extrapolation = "constant"

	overlay := writeConfig(t, `
resample:
  extrapolation: linear
`)
	require.NoError(t, MergeConfig(cfg, overlay))

	// The whole resample section is replaced, so the interpolation field
	// falls back to its zero value rather than keeping "linear".
	assert.Equal(t, "linear", cfg.Resample.Extrapolation)
	assert.Empty(t, cfg.Resample.Interpolation)
}

func TestMergeConfigIgnoresUnknownKeys(t *testing.T) {
	cfg := DefaultConfig()
	overlay := writeConfig(t, `
plotting:
  style: fancy
logging:
  level: warn
`)
	require.NoError(t, MergeConfig(cfg, overlay))
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestMergeConfigEmptyOverlay(t *testing.T) {
	cfg := DefaultConfig()
	overlay := writeConfig(t, "# run overrides go here\n")

	require.NoError(t, MergeConfig(cfg, overlay))
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestMergeConfigErrors(t *testing.T) {
	t.Run("NilTarget", func(t *testing.T) {
		err := MergeConfig(nil, "unused.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "nil target")
	})

	t.Run("MissingFile", func(t *testing.T) {
		cfg := DefaultConfig()
		err := MergeConfig(cfg, filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reading overlay file")
	})

	t.Run("MalformedYAML", func(t *testing.T) {
		cfg := DefaultConfig()
		err := MergeConfig(cfg, writeConfig(t, "run: [not\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing overlay YAML")
	})

	t.Run("BadSection", func(t *testing.T) {
		cfg := DefaultConfig()
		err := MergeConfig(cfg, writeConfig(t, "run:\n  start: [1850]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `applying overlay section "run"`)
	})
}
