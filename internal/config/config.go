package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/load-planner/internal/job"
	"github.com/eugenenazirov/load-planner/internal/packing"
	"github.com/eugenenazirov/load-planner/internal/result"
)

const (
	defaultLogLevel         = "info"
	defaultTimeout          = 5 * time.Minute
	defaultProgressInterval = 2 * time.Second
	defaultServiceName      = "load-planner"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	OrderMode        packing.OrderMode
	Distribute       bool
	DecimalPrecision int
	Workers          int
	Timeout          time.Duration
	DefaultMaxWeight float64
	LogLevel         string
	ProgressInterval time.Duration
	OutputFormat     result.Format
	OTLPEndpoint     string
	ServiceName      string
	// TraceSampleRatio is the fraction of root spans recorded, from 0 to 1.
	TraceSampleRatio float64
}

// PackingOptions returns the engine options described by the configuration.
func (c Config) PackingOptions() packing.Options {
	return packing.Options{
		Order:            c.OrderMode,
		Distribute:       c.Distribute,
		DecimalPrecision: c.DecimalPrecision,
		Workers:          c.Workers,
	}
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	OrderMode        string   `yaml:"order_mode"`
	Distribute       *bool    `yaml:"distribute"`
	DecimalPrecision *int     `yaml:"decimal_precision"`
	Workers          *int     `yaml:"workers"`
	Timeout          string   `yaml:"timeout"`
	DefaultMaxWeight *float64 `yaml:"default_max_weight"`
	LogLevel         string   `yaml:"log_level"`
	ProgressInterval string   `yaml:"progress_interval"`
	OutputFormat     string   `yaml:"output_format"`
	OTLPEndpoint     string   `yaml:"otlp_endpoint"`
	ServiceName      string   `yaml:"service_name"`
	TraceSampleRatio *float64 `yaml:"trace_sample_ratio"`
}

// CLIOverrides holds command-line flag overrides. Nil fields were not set.
type CLIOverrides struct {
	ConfigFile       string
	OrderMode        *string
	Distribute       *bool
	DecimalPrecision *int
	Workers          *int
	Timeout          *time.Duration
	LogLevel         *string
	OutputFormat     *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so the YAML file can override it.
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		OrderMode:        packing.OrderBiggerFirst,
		Distribute:       false,
		DecimalPrecision: packing.DefaultDecimalPrecision,
		Workers:          1,
		Timeout:          defaultTimeout,
		DefaultMaxWeight: job.DefaultMaxWeight,
		LogLevel:         defaultLogLevel,
		ProgressInterval: defaultProgressInterval,
		OutputFormat:     result.FormatJSON,
		ServiceName:      defaultServiceName,
		TraceSampleRatio: 1,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.OrderMode != "" {
		mode, err := packing.ParseOrderMode(yamlCfg.OrderMode)
		if err != nil {
			return err
		}
		cfg.OrderMode = mode
	}

	if yamlCfg.Distribute != nil {
		cfg.Distribute = *yamlCfg.Distribute
	}

	if yamlCfg.DecimalPrecision != nil {
		cfg.DecimalPrecision = *yamlCfg.DecimalPrecision
	}

	if yamlCfg.Workers != nil {
		cfg.Workers = *yamlCfg.Workers
	}

	if yamlCfg.Timeout != "" {
		d, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	if yamlCfg.DefaultMaxWeight != nil {
		cfg.DefaultMaxWeight = *yamlCfg.DefaultMaxWeight
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.ProgressInterval != "" {
		d, err := time.ParseDuration(yamlCfg.ProgressInterval)
		if err != nil {
			return fmt.Errorf("parse progress interval: %w", err)
		}
		cfg.ProgressInterval = d
	}

	if yamlCfg.OutputFormat != "" {
		format, err := result.ParseFormat(yamlCfg.OutputFormat)
		if err != nil {
			return err
		}
		cfg.OutputFormat = format
	}

	if yamlCfg.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = yamlCfg.OTLPEndpoint
	}

	if yamlCfg.ServiceName != "" {
		cfg.ServiceName = yamlCfg.ServiceName
	}

	if yamlCfg.TraceSampleRatio != nil {
		cfg.TraceSampleRatio = *yamlCfg.TraceSampleRatio
	}

	return nil
}

// applyEnvConfig applies environment variable configuration. Malformed
// values are reported rather than silently ignored.
func applyEnvConfig(cfg *Config) error {
	if raw := env("PACK_ORDER_MODE"); raw != "" {
		mode, err := packing.ParseOrderMode(raw)
		if err != nil {
			return fmt.Errorf("PACK_ORDER_MODE: %w", err)
		}
		cfg.OrderMode = mode
	}

	if raw := env("PACK_DISTRIBUTE"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("PACK_DISTRIBUTE: invalid boolean %q", raw)
		}
		cfg.Distribute = value
	}

	if raw := env("PACK_DECIMALS"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("PACK_DECIMALS: invalid integer %q", raw)
		}
		cfg.DecimalPrecision = value
	}

	if raw := env("PACK_WORKERS"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("PACK_WORKERS: invalid integer %q", raw)
		}
		cfg.Workers = value
	}

	if raw := env("PACK_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("PACK_TIMEOUT: invalid duration %q", raw)
		}
		cfg.Timeout = d
	}

	if raw := env("PACK_DEFAULT_MAX_WEIGHT"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("PACK_DEFAULT_MAX_WEIGHT: invalid number %q", raw)
		}
		cfg.DefaultMaxWeight = value
	}

	if raw := env("PACK_PROGRESS_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("PACK_PROGRESS_INTERVAL: invalid duration %q", raw)
		}
		cfg.ProgressInterval = d
	}

	if raw := env("LOG_LEVEL"); raw != "" {
		cfg.LogLevel = raw
	}

	if raw := env("OUTPUT_FORMAT"); raw != "" {
		format, err := result.ParseFormat(raw)
		if err != nil {
			return fmt.Errorf("OUTPUT_FORMAT: %w", err)
		}
		cfg.OutputFormat = format
	}

	if raw := env("OTEL_EXPORTER_OTLP_ENDPOINT"); raw != "" {
		cfg.OTLPEndpoint = raw
	}

	if raw := env("OTEL_SERVICE_NAME"); raw != "" {
		cfg.ServiceName = raw
	}

	if raw := env("OTEL_TRACES_SAMPLER_ARG"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: invalid number %q", raw)
		}
		cfg.TraceSampleRatio = value
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.OrderMode != nil && *overrides.OrderMode != "" {
		mode, err := packing.ParseOrderMode(*overrides.OrderMode)
		if err != nil {
			return fmt.Errorf("parse order mode: %w", err)
		}
		cfg.OrderMode = mode
	}

	if overrides.Distribute != nil {
		cfg.Distribute = *overrides.Distribute
	}

	if overrides.DecimalPrecision != nil {
		cfg.DecimalPrecision = *overrides.DecimalPrecision
	}

	if overrides.Workers != nil {
		cfg.Workers = *overrides.Workers
	}

	if overrides.Timeout != nil {
		cfg.Timeout = *overrides.Timeout
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.OutputFormat != nil && *overrides.OutputFormat != "" {
		format, err := result.ParseFormat(*overrides.OutputFormat)
		if err != nil {
			return fmt.Errorf("parse output format: %w", err)
		}
		cfg.OutputFormat = format
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.DecimalPrecision < 0 || cfg.DecimalPrecision > packing.MaxDecimalPrecision {
		return fmt.Errorf("decimal precision must be between 0 and %d, got %d", packing.MaxDecimalPrecision, cfg.DecimalPrecision)
	}
	if cfg.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", cfg.Workers)
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", cfg.Timeout)
	}
	if cfg.DefaultMaxWeight < 0 {
		return fmt.Errorf("default max weight must be >= 0, got %g", cfg.DefaultMaxWeight)
	}
	if cfg.ProgressInterval <= 0 {
		return fmt.Errorf("progress interval must be > 0, got %s", cfg.ProgressInterval)
	}
	if cfg.TraceSampleRatio < 0 || cfg.TraceSampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %g", cfg.TraceSampleRatio)
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
