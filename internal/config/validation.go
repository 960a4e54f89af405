// Package config provides configuration management for the Match Oracle service.
package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// competition codes are short upper-case identifiers like PL, BL1, ELC
var competitionCodeRe = regexp.MustCompile(`^[A-Z0-9]{2,4}$`)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	v.RegisterValidation("environment", validateEnvironment)
	v.RegisterValidation("loglevel", validateLogLevel)
	v.RegisterValidation("competitions", validateCompetitions)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

// validateEnvironment validates the environment field
func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

// validateLogLevel validates the log level field
func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
		return true
	default:
		return false
	}
}

// validateCompetitions validates the tracked competition code list
func validateCompetitions(fl validator.FieldLevel) bool {
	codes, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	for _, code := range codes {
		if !competitionCodeRe.MatchString(code) {
			return false
		}
	}
	return true
}

// validateCrossField performs validations spanning multiple fields
func validateCrossField(cfg *Config) error {
	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics port %d collides with server port", cfg.Metrics.Port)
	}
	if cfg.IsProduction() && cfg.FootballData.APIKey == "" {
		return fmt.Errorf("football_data.api_key is required in production")
	}
	return nil
}

// formatValidationErrors converts validator errors into a readable message
func formatValidationErrors(errs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
