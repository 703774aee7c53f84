// Package config loads the CLI configuration file. All fields are
// optional; unset values fall back to struct-tag defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"
)

// Config holds the nioxscan CLI settings.
type Config struct {
	// ScanDuration is the default scan window.
	ScanDuration time.Duration `yaml:"scan_duration"`

	// TargetOnly restricts scans to the NIOX device family by default.
	TargetOnly bool `yaml:"target_only" default:"false"`

	// Format selects the default output format (table, json).
	Format string `yaml:"format" default:"table"`

	// LogLevel is the default log level (debug, info, warn, error).
	// Empty keeps logging effectively silent.
	LogLevel string `yaml:"log_level" default:""`
}

// Default returns the configuration with all defaults applied.
func Default() *Config {
	cfg := new(Config)
	defaults.SetDefaults(cfg)
	cfg.ScanDuration = 10 * time.Second
	return cfg
}

// Load reads a YAML configuration file layered over the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAML accepts scan_duration in Go duration syntax ("5s",
// "1m30s") and leaves unset fields at their prior (default) values.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		ScanDuration *string `yaml:"scan_duration"`
		TargetOnly   *bool   `yaml:"target_only"`
		Format       *string `yaml:"format"`
		LogLevel     *string `yaml:"log_level"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.ScanDuration != nil {
		d, err := time.ParseDuration(*raw.ScanDuration)
		if err != nil {
			return fmt.Errorf("invalid scan_duration: %w", err)
		}
		c.ScanDuration = d
	}
	if raw.TargetOnly != nil {
		c.TargetOnly = *raw.TargetOnly
	}
	if raw.Format != nil {
		c.Format = *raw.Format
	}
	if raw.LogLevel != nil {
		c.LogLevel = *raw.LogLevel
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Format {
	case "table", "json":
	default:
		return fmt.Errorf("invalid format %q: must be table or json", c.Format)
	}
	if c.ScanDuration < 0 {
		return fmt.Errorf("scan_duration cannot be negative")
	}
	return nil
}
