// Package config defines the environment-sourced configuration for the
// rain-alert utility. Configuration is loaded once at process start and is
// immutable thereafter, following 12-Factor principles: credentials and
// endpoint URLs come from the environment (optionally seeded from a .env
// file), while per-run parameters (coordinates, cache directory) come from
// command-line flags and live in Options.
package config

import (
	"time"

	"rainalert/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the environment-sourced configuration for a run. It is populated
// once by Load and never modified.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTPTimeout applies to every outbound call (forecast, icon, notify).
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`

	Forecast ForecastConfig
	Pushover PushoverConfig
}

// ForecastConfig holds OpenWeatherMap credentials and endpoints.
type ForecastConfig struct {
	APIKey SecretString `envconfig:"OPENWEATHERMAP_API_KEY"`

	// BaseURL is the One Call endpoint queried for hourly data.
	BaseURL string `envconfig:"OPENWEATHERMAP_BASE_URL" default:"https://api.openweathermap.org/data/3.0/onecall" validate:"required,url"`

	// IconBaseURL is the unauthenticated image host for weather icons.
	IconBaseURL string `envconfig:"WEATHER_ICON_BASE_URL" default:"http://openweathermap.org/img/wn" validate:"required,url"`
}

// PushoverConfig holds Pushover credentials and the messages endpoint.
type PushoverConfig struct {
	APIKey  SecretString `envconfig:"PUSHOVER_API_KEY"`
	UserKey SecretString `envconfig:"PUSHOVER_USER_KEY"`

	BaseURL string `envconfig:"PUSHOVER_BASE_URL" default:"https://api.pushover.net/1/messages.json" validate:"required,url"`
}

// Options are the per-run parameters supplied on the command line.
// Latitude and longitude are required; no range validation is performed
// (the caller owns coordinate sanity).
type Options struct {
	Lat          float64
	Lon          float64
	IconCacheDir string
	Debug        bool
	DryRun       bool
}

// ConfigErrorType categorizes configuration loading failures to aid debugging.
type ConfigErrorType string

const (
	// ErrMissingSecret indicates a required credential is absent from the environment.
	ErrMissingSecret ConfigErrorType = "MISSING_SECRET"
	// ErrValidation indicates the populated struct failed validation rules.
	ErrValidation ConfigErrorType = "VALIDATION_FAILED"
	// ErrParsing indicates envconfig could not parse an environment value.
	ErrParsing ConfigErrorType = "PARSING_FAILED"
)
