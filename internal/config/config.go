package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"tripreport/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "TRIPS"

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig controls how trip files are read and summarized
type PipelineConfig struct {
	InputDir            string  `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	FilePattern         string  `yaml:"file_pattern" envconfig:"FILE_PATTERN" validate:"required"`
	MaxRideMinutes      float64 `yaml:"max_ride_minutes" envconfig:"MAX_RIDE_MINUTES" validate:"gt=0"`
	TopStations         int     `yaml:"top_stations" envconfig:"TOP_STATIONS" validate:"gte=1"`
	Timezone            string  `yaml:"timezone" envconfig:"TIMEZONE" validate:"required"`
	ParallelAggregation bool    `yaml:"parallel_aggregation" envconfig:"PARALLEL_AGGREGATION"`
	IncludeDaily        bool    `yaml:"include_daily" envconfig:"INCLUDE_DAILY"`
}

// OutputConfig controls where and how summary tables are written
type OutputConfig struct {
	Dir         string `yaml:"dir" envconfig:"DIR" validate:"required"`
	Excel       bool   `yaml:"excel" envconfig:"EXCEL"`
	SummaryJSON bool   `yaml:"summary_json" envconfig:"SUMMARY_JSON"`
	BOMPrefix   bool   `yaml:"bom" envconfig:"BOM"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format     string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"gte=0"`
}

// TelemetryConfig selects OpenTelemetry exporters for a run
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
	MetricsFile    string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
}

// Load builds the configuration from defaults, then the YAML file at
// configFile (or the first config file found in the usual locations when
// configFile is empty), then TRIPS_* environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, errors.NewConfigError("failed to load config from file "+configFile, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.UnmarshalStrict(data, cfg)
}

// Validate checks struct constraints plus the values that need parsing.
func (c *Config) Validate() error {
	c.normalize()

	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if _, err := regexp.Compile(c.Pipeline.FilePattern); err != nil {
		return fmt.Errorf("invalid file pattern %q: %w", c.Pipeline.FilePattern, err)
	}

	if _, err := time.LoadLocation(c.Pipeline.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Pipeline.Timezone, err)
	}

	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging output %q requires a file path", c.Logging.Output)
	}

	return nil
}

// Location returns the time zone naive trip timestamps are read in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Pipeline.Timezone)
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Output = strings.ToLower(strings.TrimSpace(c.Logging.Output))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Telemetry.TraceExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.TraceExporter))
	c.Telemetry.MetricExporter = strings.ToLower(strings.TrimSpace(c.Telemetry.MetricExporter))
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"tripreport.yaml",
		"configs/tripreport.yaml",
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			InputDir:            DefaultInputDir,
			FilePattern:         DefaultFilePattern,
			MaxRideMinutes:      DefaultMaxRideMinutes,
			TopStations:         DefaultTopStations,
			Timezone:            DefaultTimezone,
			ParallelAggregation: true,
			IncludeDaily:        false,
		},
		Output: OutputConfig{
			Dir:         DefaultOutputDir,
			Excel:       false,
			SummaryJSON: true,
			BOMPrefix:   false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "console",
			FilePath:   "logs/tripreport.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
			Environment:    "development",
		},
	}
}
