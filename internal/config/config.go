package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/harrison/fsearch/internal/logger"
	"github.com/harrison/fsearch/internal/models"
	"github.com/harrison/fsearch/internal/output"
)

// DirName is the per-project directory holding config, logs and history.
const DirName = ".fsearch"

// configFileNames are tried in order by LoadConfigFromDir.
var configFileNames = []string{"config.yaml", "config.yml", "config.toml"}

// HistoryConfig controls the session history database
type HistoryConfig struct {
	// Enabled records a summary row for every finished session
	Enabled bool

	// DBPath is the path to the SQLite history database
	DBPath string
}

// OutputConfig controls how results are rendered
type OutputConfig struct {
	// Format is one of text, json, yaml, markdown, html
	Format string
}

// Config represents fsearch configuration options
type Config struct {
	// MaxResults caps delivered matches (0 = unlimited)
	MaxResults int

	// MaxWorkers bounds concurrently walked subtrees (0 = number of CPUs)
	MaxWorkers int

	// ShutdownTimeout is how long a cancelled search waits for its workers
	ShutdownTimeout time.Duration

	// Timeout cancels a search after this long (0 = no limit)
	Timeout time.Duration

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string

	// LogDir is the directory where run logs are written ("" disables file logs)
	LogDir string

	// MaxDirsPerSecond throttles directory listings (0 = unthrottled)
	MaxDirsPerSecond float64

	// IncludeDirectories also reports matching directory names
	IncludeDirectories bool

	History HistoryConfig
	Output  OutputConfig
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		MaxResults:      0,
		MaxWorkers:      0,
		ShutdownTimeout: models.DefaultShutdownTimeout,
		Timeout:         0,
		LogLevel:        "info",
		LogDir:          filepath.Join(DirName, "logs"),
		History: HistoryConfig{
			Enabled: true,
			DBPath:  filepath.Join(DirName, "history.db"),
		},
		Output: OutputConfig{
			Format: string(output.FormatText),
		},
	}
}

// fileConfig mirrors the on-disk layout. Pointer fields distinguish an
// absent key from an explicit zero value; durations are strings ("30s").
type fileConfig struct {
	MaxResults         *int     `yaml:"max_results" toml:"max_results"`
	MaxWorkers         *int     `yaml:"max_workers" toml:"max_workers"`
	ShutdownTimeout    *string  `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	Timeout            *string  `yaml:"timeout" toml:"timeout"`
	LogLevel           *string  `yaml:"log_level" toml:"log_level"`
	LogDir             *string  `yaml:"log_dir" toml:"log_dir"`
	MaxDirsPerSecond   *float64 `yaml:"max_dirs_per_second" toml:"max_dirs_per_second"`
	IncludeDirectories *bool    `yaml:"include_directories" toml:"include_directories"`
	History            *struct {
		Enabled *bool   `yaml:"enabled" toml:"enabled"`
		DBPath  *string `yaml:"db_path" toml:"db_path"`
	} `yaml:"history" toml:"history"`
	Output *struct {
		Format *string `yaml:"format" toml:"format"`
	} `yaml:"output" toml:"output"`
}

// LoadConfig loads configuration from the specified file path.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.apply(fc); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// apply merges values present in the file over the current settings.
func (c *Config) apply(fc fileConfig) error {
	if fc.MaxResults != nil {
		c.MaxResults = *fc.MaxResults
	}
	if fc.MaxWorkers != nil {
		c.MaxWorkers = *fc.MaxWorkers
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown_timeout format %q: %w", *fc.ShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout format %q: %w", *fc.Timeout, err)
		}
		c.Timeout = d
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogDir != nil {
		c.LogDir = *fc.LogDir
	}
	if fc.MaxDirsPerSecond != nil {
		c.MaxDirsPerSecond = *fc.MaxDirsPerSecond
	}
	if fc.IncludeDirectories != nil {
		c.IncludeDirectories = *fc.IncludeDirectories
	}
	if fc.History != nil {
		if fc.History.Enabled != nil {
			c.History.Enabled = *fc.History.Enabled
		}
		if fc.History.DBPath != nil {
			c.History.DBPath = *fc.History.DBPath
		}
	}
	if fc.Output != nil && fc.Output.Format != nil {
		c.Output.Format = *fc.Output.Format
	}
	return nil
}

// LoadConfigFromDir loads the first of .fsearch/config.yaml, config.yml or
// config.toml found in dir. Without any of them the defaults are returned.
func LoadConfigFromDir(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, DirName, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// FlagOverrides carries CLI flag values. Nil fields were not set on the
// command line and leave the configuration untouched.
type FlagOverrides struct {
	MaxResults         *int
	MaxWorkers         *int
	Timeout            *time.Duration
	ShutdownTimeout    *time.Duration
	LogLevel           *string
	LogDir             *string
	MaxDirsPerSecond   *float64
	IncludeDirectories *bool
	Format             *string
	NoHistory          *bool
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(f FlagOverrides) {
	if f.MaxResults != nil {
		c.MaxResults = *f.MaxResults
	}
	if f.MaxWorkers != nil {
		c.MaxWorkers = *f.MaxWorkers
	}
	if f.Timeout != nil {
		c.Timeout = *f.Timeout
	}
	if f.ShutdownTimeout != nil {
		c.ShutdownTimeout = *f.ShutdownTimeout
	}
	if f.LogLevel != nil {
		c.LogLevel = *f.LogLevel
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.MaxDirsPerSecond != nil {
		c.MaxDirsPerSecond = *f.MaxDirsPerSecond
	}
	if f.IncludeDirectories != nil {
		c.IncludeDirectories = *f.IncludeDirectories
	}
	if f.Format != nil {
		c.Output.Format = *f.Format
	}
	if f.NoHistory != nil && *f.NoHistory {
		c.History.Enabled = false
	}
}

// Validate validates the configuration values.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0, got %d", c.MaxResults)
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must be >= 0, got %d", c.MaxWorkers)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be > 0, got %v", c.ShutdownTimeout)
	}
	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}
	if c.MaxDirsPerSecond < 0 {
		return fmt.Errorf("max_dirs_per_second must be >= 0, got %v", c.MaxDirsPerSecond)
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return fmt.Errorf("history.db_path cannot be empty when history is enabled")
	}
	return nil
}

// SearchOptions converts the configuration into engine options.
func (c *Config) SearchOptions() models.Options {
	return models.Options{
		MaxResults:         c.MaxResults,
		MaxWorkers:         c.MaxWorkers,
		ShutdownTimeout:    c.ShutdownTimeout,
		MaxDirsPerSecond:   c.MaxDirsPerSecond,
		IncludeDirectories: c.IncludeDirectories,
	}
}
