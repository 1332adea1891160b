package types

import "fmt"

// ErrorCode is a typed string for categorizing application errors.
type ErrorCode string

// Error code constants. Call sites use these instead of hardcoded strings
// so main can distinguish configuration failures from upstream failures.
const (
	// Configuration
	ErrCodeConfigMissingSecret ErrorCode = "config_missing_secret"
	ErrCodeConfigInvalid       ErrorCode = "config_invalid"

	// Upstream (fatal)
	ErrCodeUpstreamForecast ErrorCode = "upstream_forecast_unavailable"
	ErrCodeUpstreamNotify   ErrorCode = "upstream_notify_unavailable"

	// Upstream (non-fatal; the run continues without an attachment)
	ErrCodeUpstreamIcon ErrorCode = "upstream_icon_unavailable"

	// Domain
	ErrCodeForecastEmpty ErrorCode = "forecast_empty_response"

	// Internal
	ErrCodeInternalUnexpected ErrorCode = "internal_unexpected_error"
)

// AppError is the standard application error type. Domain errors are
// expressed as AppError to enable consistent formatting and error chain
// support via errors.Is/errors.As.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError wrapping an underlying cause.
// The cause may be nil.
func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
