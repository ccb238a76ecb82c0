// Package config holds the strongly-typed application configuration.
// Values are resolved once at load time: built-in defaults, then an
// optional YAML file, then GLUCOSE_* environment overrides, validated
// eagerly so misconfiguration surfaces at startup rather than at use.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"glucli/pkg/contracts/domain"
)

// Config is the complete application configuration.
type Config struct {
	Output     OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Thresholds ThresholdConfig `yaml:"thresholds" envconfig:"THRESHOLDS"`
	Export     ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Storage    StorageConfig   `yaml:"storage" envconfig:"STORAGE"`
	Logging    LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
}

// OutputConfig controls where and how reports are written.
type OutputConfig struct {
	// Folder receives generated reports; empty means alongside the
	// input file.
	Folder     string `yaml:"folder" envconfig:"FOLDER"`
	AutoOpen   bool   `yaml:"auto_open" envconfig:"AUTO_OPEN"`
	DateFormat string `yaml:"date_format" envconfig:"DATE_FORMAT" validate:"required"`
}

// ThresholdConfig holds the glucose band boundaries in mmol/L.
// Ordering is validated at load; it is never auto-corrected.
type ThresholdConfig struct {
	Low      float64 `yaml:"low" envconfig:"LOW" validate:"gt=0"`
	High     float64 `yaml:"high" envconfig:"HIGH" validate:"gtfield=Low"`
	VeryHigh float64 `yaml:"very_high" envconfig:"VERY_HIGH" validate:"gtfield=High"`
}

// ExportConfig controls incremental export and date filtering.
type ExportConfig struct {
	Incremental       bool   `yaml:"incremental" envconfig:"INCREMENTAL"`
	DateFilterEnabled bool   `yaml:"date_filter_enabled" envconfig:"DATE_FILTER_ENABLED"`
	DateFilterDays    int    `yaml:"date_filter_days" envconfig:"DATE_FILTER_DAYS" validate:"min=1"`
	DefaultTemplate   string `yaml:"default_template" envconfig:"DEFAULT_TEMPLATE"`
}

// StorageConfig names the persistent state locations. Empty fields are
// resolved to home-directory defaults at load so the core never reads
// a user profile path ad hoc.
type StorageConfig struct {
	TrackerFile  string `yaml:"tracker_file" envconfig:"TRACKER_FILE" validate:"required"`
	TemplateDir  string `yaml:"template_dir" envconfig:"TEMPLATE_DIR" validate:"required"`
	DownloadsDir string `yaml:"downloads_dir" envconfig:"DOWNLOADS_DIR"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			DateFormat: "02.01.2006 15:04",
		},
		Thresholds: ThresholdConfig{
			Low:      4.0,
			High:     11.9,
			VeryHigh: 17.9,
		},
		Export: ExportConfig{
			Incremental:    true,
			DateFilterDays: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "console",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path
// (or a discovered glucose.yaml when path is empty), and GLUCOSE_*
// environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = discoverConfigFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("GLUCOSE", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolveStorage(); err != nil {
		return nil, fmt.Errorf("failed to resolve storage paths: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration, including threshold ordering.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// GlucoseThresholds converts the configured boundaries into the domain
// type the classifier consumes.
func (c *Config) GlucoseThresholds() domain.Thresholds {
	return domain.Thresholds{
		Low:      c.Thresholds.Low,
		High:     c.Thresholds.High,
		VeryHigh: c.Thresholds.VeryHigh,
	}
}

// resolveStorage fills empty storage locations with home-directory
// defaults.
func (c *Config) resolveStorage() error {
	if c.Storage.TrackerFile != "" && c.Storage.TemplateDir != "" && c.Storage.DownloadsDir != "" {
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}

	if c.Storage.TrackerFile == "" {
		c.Storage.TrackerFile = filepath.Join(home, ".glucose_export_tracker.json")
	}
	if c.Storage.TemplateDir == "" {
		c.Storage.TemplateDir = filepath.Join(home, ".glucose_templates")
	}
	if c.Storage.DownloadsDir == "" {
		c.Storage.DownloadsDir = filepath.Join(home, "Downloads")
	}
	return nil
}

// discoverConfigFile checks the conventional config locations.
func discoverConfigFile() string {
	locations := []string{
		"glucose.yaml",
		"configs/glucose.yaml",
	}
	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}
