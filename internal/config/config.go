// Package config loads dirlist settings from a YAML file and command-line flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when no --config
// flag is given.
const DefaultFileName = ".dirlist.yaml"

// Config represents dirlist configuration options
type Config struct {
	// Workers is the number of listing workers
	Workers int `yaml:"workers"`

	// QueueCapacity bounds the pending directory queue (0 = unbounded)
	QueueCapacity int `yaml:"queue_capacity"`

	// Timeout bounds a single listing (0 = no limit)
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// ListRate limits directory reads per second (0 = unlimited)
	ListRate float64 `yaml:"list_rate"`

	// ListBurst is the number of directory reads allowed at once when ListRate is set
	ListBurst int `yaml:"list_burst"`

	// Metrics prints listing counters after each run
	Metrics bool `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Workers:       runtime.NumCPU(),
		QueueCapacity: 0, // Unbounded
		Timeout:       0, // No limit
		LogLevel:      "info",
		ListRate:      0,
		ListBurst:     1,
		Metrics:       false,
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are written as strings ("30s") in the file
	type yamlConfig struct {
		Workers       *int     `yaml:"workers"`
		QueueCapacity *int     `yaml:"queue_capacity"`
		Timeout       string   `yaml:"timeout"`
		LogLevel      string   `yaml:"log_level"`
		ListRate      *float64 `yaml:"list_rate"`
		ListBurst     *int     `yaml:"list_burst"`
		Metrics       *bool    `yaml:"metrics"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Workers != nil {
		cfg.Workers = *yamlCfg.Workers
	}
	if yamlCfg.QueueCapacity != nil {
		cfg.QueueCapacity = *yamlCfg.QueueCapacity
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.ListRate != nil {
		cfg.ListRate = *yamlCfg.ListRate
	}
	if yamlCfg.ListBurst != nil {
		cfg.ListBurst = *yamlCfg.ListBurst
	}
	if yamlCfg.Metrics != nil {
		cfg.Metrics = *yamlCfg.Metrics
	}

	return cfg, nil
}

// MergeWithFlags overrides file values with flags the user set explicitly.
// A nil pointer means the flag was not given.
func (c *Config) MergeWithFlags(workers, queueCapacity *int, timeout *time.Duration, logLevel *string, metrics *bool) {
	if workers != nil {
		c.Workers = *workers
	}
	if queueCapacity != nil {
		c.QueueCapacity = *queueCapacity
	}
	if timeout != nil {
		c.Timeout = *timeout
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if metrics != nil {
		c.Metrics = *metrics
	}
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.QueueCapacity < 0 {
		return fmt.Errorf("queue_capacity cannot be negative, got %d", c.QueueCapacity)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout)
	}
	if c.ListRate < 0 {
		return fmt.Errorf("list_rate cannot be negative, got %g", c.ListRate)
	}
	if c.ListRate > 0 && c.ListBurst <= 0 {
		return fmt.Errorf("list_burst must be positive when list_rate is set, got %d", c.ListBurst)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of trace, debug, info, warn, error", c.LogLevel)
	}
	return nil
}
