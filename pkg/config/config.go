// Package config provides configuration loading and management for medphys.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation"
	"gopkg.in/yaml.v3"
)

// Directions accepted for profiles
var Directions = []interface{}{"inplane", "inline", "crossplane", "crossline"}

// Config represents the application configuration loaded from YAML
type Config struct {
	Logging struct {
		// Level is a logrus level name (debug, info, warn, error)
		Level string `yaml:"level"`
	} `yaml:"logging"`

	// Dose-volume histogram parameters
	DVH struct {
		// Bins is the number of equal-width dose bins
		Bins int `yaml:"bins"`
	} `yaml:"dvh"`

	Profile struct {
		// Direction is the default profile direction
		Direction string `yaml:"direction"`
	} `yaml:"profile"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Logging.Level = "info"
	cfg.DVH.Bins = 100
	cfg.Profile.Direction = "crossplane"

	return cfg
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level, validation.Required,
			validation.In("trace", "debug", "info", "warn", "warning", "error", "fatal", "panic")),
	); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := validation.ValidateStruct(&c.DVH,
		validation.Field(&c.DVH.Bins, validation.Required, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("invalid dvh config: %w", err)
	}

	if err := validation.ValidateStruct(&c.Profile,
		validation.Field(&c.Profile.Direction, validation.Required, validation.In(Directions...)),
	); err != nil {
		return fmt.Errorf("invalid profile config: %w", err)
	}

	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
