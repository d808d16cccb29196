// Package core provides shared types, configuration, and error handling
// for the icon generation backend.
//
// errors.go defines the typed error kinds produced at the boundaries where
// failures originate. Each kind carries enough structure for the classifier
// (classify.go) to map it without re-parsing message strings.
package core

import (
	"fmt"
)

// Network error codes carried by NetworkError.
// These mirror the codes surfaced by transport-level failures.
const (
	NetCodeTimeout           = "ETIMEDOUT"
	NetCodeConnectionReset   = "ECONNRESET"
	NetCodeHostNotFound      = "ENOTFOUND"
	NetCodeConnectionRefused = "ECONNREFUSED"
)

// Stable error codes carried by APIError and surfaced to callers.
const (
	ErrCodeGenerationFailed = "GENERATION_FAILED"
	ErrCodeExtractionFailed = "RESPONSE_EXTRACTION_FAILED"
	ErrCodeProviderError    = "PROVIDER_ERROR"
)

// ValidationError represents a request validation failure.
// It is produced before any external call is made.
type ValidationError struct {
	// Field is the request field that failed validation (optional).
	Field string
	// Message is the user-facing description of the failure.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a ValidationError without a field reference.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// APIError represents a failure reported by the external image generation
// provider, or an aggregate generation failure carrying a stable code.
type APIError struct {
	// Status is the HTTP status reported by the provider.
	Status int
	// Code is a stable machine-readable error code (optional).
	Code string
	// Message is a human-readable description of the failure.
	Message string
	// RetryAfter is the provider-suggested wait in seconds (0 when absent).
	RetryAfter int
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status associated with the error.
// Implementing this interface lets the classifier treat any error that
// carries a status uniformly.
func (e *APIError) StatusCode() int {
	return e.Status
}

// NetworkError represents a transport-level failure reaching the provider.
type NetworkError struct {
	// Code is one of the NetCode constants, or empty when unknown.
	Code string
	// Message describes the underlying failure.
	Message string
}

// NetworkCode returns the network error code. Implementing this
// interface lets retry logic inspect the code without importing the
// concrete type.
func (e *NetworkError) NetworkCode() string {
	return e.Code
}

func (e *NetworkError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("network error (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("network error: %s", e.Message)
}

// networkMessages maps network error codes to user-facing messages.
var networkMessages = map[string]string{
	NetCodeTimeout:           "The request to the image service timed out. Please try again.",
	NetCodeConnectionReset:   "The connection to the image service was reset. Please try again.",
	NetCodeHostNotFound:      "The image service could not be reached. Please check your network.",
	NetCodeConnectionRefused: "The image service refused the connection. Please try again later.",
}

// NetworkMessageForCode returns the user-facing message for a network error
// code, falling back to a generic message for unknown codes.
func NetworkMessageForCode(code string) string {
	if msg, ok := networkMessages[code]; ok {
		return msg
	}
	return "A network error occurred while contacting the image service. Please try again."
}

// ConfigError represents a configuration-related error with an actionable
// instruction for resolution.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingAuth  = "MISSING_AUTH"
	ErrCodeInvalidPort  = "INVALID_PORT"
	ErrCodeInvalidRetry = "INVALID_RETRY_CONFIG"
	ErrCodeStylesFile   = "STYLES_FILE_INVALID"
)

// ErrMissingAuth returns an error for a missing provider API key.
func ErrMissingAuth() *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingAuth,
		Message: "Missing authentication credentials for the image provider",
		Action:  "Set OPENAI_API_KEY in your .env file",
	}
}

// ErrInvalidPort returns an error for an out-of-range listen port.
func ErrInvalidPort(port int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidPort,
		Message: fmt.Sprintf("Invalid PORT value: %d", port),
		Action:  "Set PORT to a value between 1 and 65535",
	}
}

// ErrInvalidRetry returns an error for a non-positive retry configuration.
func ErrInvalidRetry(reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidRetry,
		Message: fmt.Sprintf("Invalid retry configuration: %s", reason),
		Action:  "Set MAX_RETRIES to at least 1 and RETRY_DELAY_MS to a positive value",
	}
}

// ErrStylesFile returns an error for an unreadable style preset file.
func ErrStylesFile(path string, reason string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeStylesFile,
		Message: fmt.Sprintf("Cannot load style presets from %s: %s", path, reason),
		Action:  "Fix the YAML file referenced by STYLES_FILE or unset the variable",
	}
}

// IsConfigError checks if an error is a ConfigError and returns it if so.
func IsConfigError(err error) (*ConfigError, bool) {
	if configErr, ok := err.(*ConfigError); ok {
		return configErr, true
	}
	return nil, false
}
