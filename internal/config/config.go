// Package config provides Viper-based configuration loading for the
// dicetower CLI.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// MacrosConfig points at the optional named-roll shorthand file.
type MacrosConfig struct {
	// Path is the macro YAML file; empty disables macro lookup.
	Path string `mapstructure:"path"`
}

// RollConfig holds evaluation settings.
type RollConfig struct {
	// Trials is the sample count for the observed-average display in
	// info mode; 0 disables sampling and shows only the analytic EV.
	Trials int `mapstructure:"trials"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Macros  MacrosConfig  `mapstructure:"macros"`
	Roll    RollConfig    `mapstructure:"roll"`
}

// Default returns the configuration used when no file is given.
//
// Postcondition: Default().Validate() == nil.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Roll:    RollConfig{Trials: 0},
	}
}

// Validate checks all configuration invariants.
//
// Postcondition: returns nil for a valid configuration, or an error
// describing every violation.
func (c Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be \"json\" or \"console\", got %q", c.Logging.Format))
	}
	if c.Roll.Trials < 0 {
		errs = append(errs, fmt.Sprintf("roll.trials must be >= 0, got %d", c.Roll.Trials))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from path, applies DICETOWER_-prefixed
// environment overrides, and validates the result. An empty path returns
// the defaults (still subject to environment overrides).
//
// Postcondition: returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetEnvPrefix("DICETOWER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := Default()
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("macros.path", defaults.Macros.Path)
	v.SetDefault("roll.trials", defaults.Roll.Trials)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
