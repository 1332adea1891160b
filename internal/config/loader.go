// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Load .env file via godotenv (non-fatal if absent).
//  2. Use envconfig to process struct tags and populate the Config struct.
//  3. Check each required credential and report the missing one by its
//     environment variable name.
//  4. Validate the struct using go-playground/validator.
//
// A missing credential is reported before any network call is made; main
// exits with status 1 on any ConfigError.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"rainalert/internal/types"
)

// ConfigError is a diagnostic error type returned by Load to aid debugging.
// It wraps a ConfigErrorType and an underlying error message.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Load loads and validates the rain-alert configuration from the process
// environment. A .env file in the working directory is honored but never
// overrides existing environment variables.
func Load() (*Config, error) {
	// godotenv.Load silently succeeds if no .env file exists.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrParsing,
			Message: "failed to process environment configuration",
			Err:     err,
		}
	}

	// Report the first missing credential by its exact variable name so the
	// operator knows which one to set. Checked before validator so the
	// message stays actionable.
	secrets := []struct {
		name  string
		value types.SecretString
	}{
		{"OPENWEATHERMAP_API_KEY", cfg.Forecast.APIKey},
		{"PUSHOVER_API_KEY", cfg.Pushover.APIKey},
		{"PUSHOVER_USER_KEY", cfg.Pushover.UserKey},
	}
	for _, s := range secrets {
		if s.value == "" {
			return nil, &ConfigError{
				Type:    ErrMissingSecret,
				Message: s.name + " not found",
			}
		}
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, &ConfigError{
			Type:    ErrValidation,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return &cfg, nil
}
