package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.Log.File)
	assert.InDelta(t, 4.0, cfg.Map.MinZoom, 0.001)
	assert.InDelta(t, 17.0, cfg.Map.MaxZoom, 0.001)
	assert.Equal(t, 1024, cfg.Map.Width)
	assert.Equal(t, 768, cfg.Map.Height)
	assert.Equal(t, []float64{-127.18, 31.05, -111.62, 43.13}, cfg.Map.Bounds)
	assert.InDelta(t, 64.0, cfg.Map.PanStep, 0.001)
	assert.InDelta(t, 0.5, cfg.Map.ZoomStep, 0.001)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.Settle)
	assert.Empty(t, cfg.Data.Style)
	assert.Empty(t, cfg.Store.Path)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, "pm2.5", cfg.Indicator)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
  format: console
map:
  min_zoom: 2
  width: 800
ui:
  settle: 1s
data:
  style: data/ca
indicator: resp
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.InDelta(t, 2.0, cfg.Map.MinZoom, 0.001)
	assert.Equal(t, 800, cfg.Map.Width)
	assert.Equal(t, time.Second, cfg.UI.Settle)
	assert.Equal(t, "data/ca", cfg.Data.Style)
	assert.Equal(t, "resp", cfg.Indicator)
	// Defaults still apply for unset values
	assert.Equal(t, 768, cfg.Map.Height)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log:\n  level: debug\n"), 0644))

	t.Setenv("EJMAP_LOG_LEVEL", "warn")
	t.Setenv("EJMAP_STORE_PATH", "/tmp/snapshots.db")
	t.Setenv("EJMAP_INDICATOR", "ozone")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/snapshots.db", cfg.Store.Path)
	assert.Equal(t, "ozone", cfg.Indicator)
}

func TestLoadBadYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [\n"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{Map: MapConfig{MinZoom: 4, MaxZoom: 17, Width: 1024, Height: 768}}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"inverted zoom", func(c *Config) { c.Map.MinZoom = 18 }, false},
		{"zoom too deep", func(c *Config) { c.Map.MaxZoom = 30 }, false},
		{"zero width", func(c *Config) { c.Map.Width = 0 }, false},
		{"short bounds", func(c *Config) { c.Map.Bounds = []float64{1, 2, 3} }, false},
		{"negative settle", func(c *Config) { c.UI.Settle = -time.Second }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestInitLogger(t *testing.T) {
	prev := zap.L()
	t.Cleanup(func() { zap.ReplaceGlobals(prev) })

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	logFile := filepath.Join(t.TempDir(), "ejmap.log")
	require.NoError(t, InitLogger(LogConfig{Level: "warn", Format: "json", File: logFile}))
	assert.False(t, zap.L().Core().Enabled(zap.InfoLevel))
	zap.L().Warn("written to file")
	_ = zap.L().Sync()
	b, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "written to file")

	assert.Error(t, InitLogger(LogConfig{Level: "loud"}))
}
