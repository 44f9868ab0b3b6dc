// Package config loads process-level settings for the dockhand CLI.
//
// Settings here govern how dockhand itself behaves (log level, health
// check timing, compose project naming). Everything describing the managed
// application (image name, ports, build targets) lives in the project
// manifest instead; see internal/manifest.
//
// Resolution order, later wins:
//  1. Built-in defaults
//  2. Optional dockhand.yaml in the working directory
//  3. DOCKHAND_* environment variables
//  4. Command-line flags bound by the cli package
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds logging-related settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// HealthConfig holds health check timing settings.
type HealthConfig struct {
	// TimeoutSeconds is the overall deadline for the health verb.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`

	// IntervalSeconds is the delay between poll attempts.
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// ComposeConfig holds docker compose invocation settings.
type ComposeConfig struct {
	// ProjectName is passed as COMPOSE_PROJECT_NAME. Empty means the
	// application name from the manifest is used.
	ProjectName string `mapstructure:"project_name"`
}

// Config is the top-level configuration struct.
type Config struct {
	// ManifestPath overrides where dockhand.jsonc is looked up.
	ManifestPath string `mapstructure:"manifest_path"`

	Logging LoggingConfig `mapstructure:"log"`
	Health  HealthConfig  `mapstructure:"health"`
	Compose ComposeConfig `mapstructure:"compose"`
}

// InitConfig sets defaults, registers the optional config file, and enables
// environment variable binding. Call once before Load.
func InitConfig() error {
	viper.SetDefault("manifest_path", "")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("health.timeout_seconds", 30)
	viper.SetDefault("health.interval_seconds", 2)
	viper.SetDefault("compose.project_name", "")

	viper.SetConfigName("dockhand")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	// The config file is optional; only a malformed file is an error.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetEnvPrefix("dockhand")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return nil
}

// Load unmarshals the resolved configuration into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}
	return &cfg, nil
}
