// Package config provides configuration management for the Match Oracle service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("MATCH_ORACLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// Missing config files are tolerated: defaults plus environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("MATCH_ORACLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "match-oracle")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("football_data.base_url", "https://api.football-data.org/v4")
	v.SetDefault("football_data.timeout_seconds", 30)
	v.SetDefault("football_data.retry_attempts", 3)
	v.SetDefault("football_data.requests_per_minute", 10)
	v.SetDefault("football_data.tracked_competitions", []string{"PL", "PD", "BL1", "CL", "SA", "ELC"})
	v.SetDefault("football_data.max_h2h_per_day", 10)
	v.SetDefault("football_data.h2h_match_limit", 10)
	v.SetDefault("football_data.prefetch_days_ahead", 7)
	v.SetDefault("prediction.max_form_matches", 15)
	v.SetDefault("prediction.form_lookback_days", 90)
	v.SetDefault("prediction.h2h_weight", 0.7)
	v.SetDefault("prediction.result_limit", 30)
	v.SetDefault("prediction.top_picks_limit", 10)
	v.SetDefault("retention.default_days", 7)
	v.SetDefault("server.port", 8000)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	// If file doesn't exist, continue with defaults and environment variables

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
