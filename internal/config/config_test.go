package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "glucose.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "02.01.2006 15:04", cfg.Output.DateFormat)
	assert.Equal(t, 4.0, cfg.Thresholds.Low)
	assert.Equal(t, 11.9, cfg.Thresholds.High)
	assert.Equal(t, 17.9, cfg.Thresholds.VeryHigh)
	assert.True(t, cfg.Export.Incremental)
	assert.False(t, cfg.Export.DateFilterEnabled)
	assert.Equal(t, 30, cfg.Export.DateFilterDays)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
thresholds:
  low: 3.9
  high: 10.0
  very_high: 15.0
export:
  incremental: false
output:
  folder: /tmp/reports
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3.9, cfg.Thresholds.Low)
	assert.Equal(t, 10.0, cfg.Thresholds.High)
	assert.Equal(t, 15.0, cfg.Thresholds.VeryHigh)
	assert.False(t, cfg.Export.Incremental)
	assert.Equal(t, "/tmp/reports", cfg.Output.Folder)

	// Untouched values keep their defaults.
	assert.Equal(t, "02.01.2006 15:04", cfg.Output.DateFormat)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
thresholds:
  low: 3.9
`)
	t.Setenv("GLUCOSE_THRESHOLDS_LOW", "4.5")
	t.Setenv("GLUCOSE_EXPORT_DEFAULT_TEMPLATE", "clinic")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.5, cfg.Thresholds.Low)
	assert.Equal(t, "clinic", cfg.Export.DefaultTemplate)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfigFile(t, "thresholds: [not a map")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_ResolvesStorageDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".glucose_export_tracker.json"), cfg.Storage.TrackerFile)
	assert.Equal(t, filepath.Join(home, ".glucose_templates"), cfg.Storage.TemplateDir)
	assert.Equal(t, filepath.Join(home, "Downloads"), cfg.Storage.DownloadsDir)
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"high below low", func(c *Config) { c.Thresholds.High = 3.0 }},
		{"very high below high", func(c *Config) { c.Thresholds.VeryHigh = 5.0 }},
		{"low not positive", func(c *Config) { c.Thresholds.Low = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Storage.TrackerFile = "tracker.json"
			cfg.Storage.TemplateDir = "templates"
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_LoggingValues(t *testing.T) {
	cfg := Default()
	cfg.Storage.TrackerFile = "tracker.json"
	cfg.Storage.TemplateDir = "templates"
	require.NoError(t, cfg.Validate())

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

func TestGlucoseThresholds(t *testing.T) {
	cfg := Default()
	th := cfg.GlucoseThresholds()
	assert.Equal(t, 4.0, th.Low)
	assert.Equal(t, 11.9, th.High)
	assert.Equal(t, 17.9, th.VeryHigh)
}
