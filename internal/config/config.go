// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Pricing defaults applied to requests that leave them unset
	HourlyRate float64 `json:"hourly_rate,omitempty" yaml:"hourly_rate,omitempty"` // Contractor's own hourly rate in kr
	Region     string  `json:"region,omitempty" yaml:"region,omitempty"`           // Default region, e.g. "stockholm"
	Quality    string  `json:"quality,omitempty" yaml:"quality,omitempty"`         // Default quality tier

	// Behavior
	AutoFix      bool   `json:"auto_fix,omitempty" yaml:"auto_fix,omitempty"`           // Synthesize missing mandatory items
	CapDeduction bool   `json:"cap_deduction,omitempty" yaml:"cap_deduction,omitempty"` // Limit ROT/RUT to the statutory yearly cap
	Concurrency  int    `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`     // Parallel pipelines in batch mode
	Verbose      bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`             // Print detailed debug information
	LogLevel     string `json:"log_level,omitempty" yaml:"log_level,omitempty"`         // debug, info, warn or error
	LogFormat    string `json:"log_format,omitempty" yaml:"log_format,omitempty"`       // json or console

	// Collaborators
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty"`           // Gemini API key
	DraftTimeout int    `json:"draft_timeout,omitempty" yaml:"draft_timeout,omitempty"` // Seconds to wait for a generated draft
	DatabaseURL  string `json:"database_url,omitempty" yaml:"database_url,omitempty"`   // PostgreSQL connection URL
	Addr         string `json:"addr,omitempty" yaml:"addr,omitempty"`                   // HTTP listen address
}

var qualityTiers = map[string]bool{"budget": true, "standard": true, "premium": true}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// LoadConfig loads configuration from a JSON or YAML file; the extension picks the format.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	// Validate numeric ranges
	if c.HourlyRate < 0 {
		return fmt.Errorf("config error: 'hourly_rate' must be non-negative")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if c.DraftTimeout < 0 {
		return fmt.Errorf("config error: 'draft_timeout' must be non-negative")
	}

	// Validate enumerations
	if c.Quality != "" && !qualityTiers[strings.ToLower(c.Quality)] {
		return fmt.Errorf("config error: unknown quality %q", c.Quality)
	}
	if c.LogLevel != "" && !logLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("config error: unknown log level %q", c.LogLevel)
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("config error: 'log_format' must be json or console")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Region == "" {
		result.Region = defaults.Region
	}
	if result.Quality == "" {
		result.Quality = defaults.Quality
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}

	// Numeric fields: use default if zero
	if result.HourlyRate == 0 {
		result.HourlyRate = defaults.HourlyRate
	}
	if result.DraftTimeout == 0 {
		result.DraftTimeout = defaults.DraftTimeout
	}
	if result.Concurrency == 0 {
		if defaults.Concurrency > 0 {
			result.Concurrency = defaults.Concurrency
		} else {
			result.Concurrency = 4
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// FromEnv fills unset collaborator settings from the environment
func (c *Config) FromEnv() {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("LOG_LEVEL")
	}
	if c.Addr == "" {
		c.Addr = os.Getenv("QUOTE_ADDR")
	}
}
