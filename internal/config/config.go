// Package config provides configuration management for the Match Oracle service.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App          AppConfig          `mapstructure:"app" validate:"required"`
	Database     DatabaseConfig     `mapstructure:"database" validate:"required"`
	FootballData FootballDataConfig `mapstructure:"football_data" validate:"required"`
	Prediction   PredictionConfig   `mapstructure:"prediction" validate:"required"`
	Retention    RetentionConfig    `mapstructure:"retention" validate:"required"`
	Server       ServerConfig       `mapstructure:"server" validate:"required"`
	Metrics      MetricsConfig      `mapstructure:"metrics" validate:"required"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// FootballDataConfig represents the upstream data provider configuration
type FootballDataConfig struct {
	BaseURL             string   `mapstructure:"base_url" validate:"required,url"`
	APIKey              string   `mapstructure:"api_key"`
	TimeoutSeconds      int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts       int      `mapstructure:"retry_attempts" validate:"gte=0,lte=3"`
	RequestsPerMinute   float64  `mapstructure:"requests_per_minute" validate:"required,gt=0"`
	TrackedCompetitions []string `mapstructure:"tracked_competitions" validate:"required,min=1,competitions"`
	MaxH2HPerDay        int      `mapstructure:"max_h2h_per_day" validate:"required,gt=0"`
	H2HMatchLimit       int      `mapstructure:"h2h_match_limit" validate:"required,gt=0"`
	PrefetchDaysAhead   int      `mapstructure:"prefetch_days_ahead" validate:"required,gt=0"`
}

// PredictionConfig represents prediction engine configuration
type PredictionConfig struct {
	MaxFormMatches   int     `mapstructure:"max_form_matches" validate:"required,gt=0"`
	FormLookbackDays int     `mapstructure:"form_lookback_days" validate:"required,gt=0"`
	H2HWeight        float64 `mapstructure:"h2h_weight" validate:"required,gt=0,lt=1"`
	ResultLimit      int     `mapstructure:"result_limit" validate:"required,gt=0"`
	TopPicksLimit    int     `mapstructure:"top_picks_limit" validate:"required,gt=0"`
}

// RetentionConfig represents retention sweeper configuration
type RetentionConfig struct {
	DefaultDays int `mapstructure:"default_days" validate:"required,gte=1"`
}

// ServerConfig represents API server configuration
type ServerConfig struct {
	Port        int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	AdminAPIKey string `mapstructure:"admin_api_key"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig represents scheduled job configuration
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	DailyIngestCron string `mapstructure:"daily_ingest_cron"`
	TeamStatsCron   string `mapstructure:"team_stats_cron"`
	RetentionCron   string `mapstructure:"retention_cron"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
