// Package core provides shared types, configuration, and error handling
// for the icon generation backend.
//
// classify.go maps any error into a stable taxonomy with a user-facing
// message, HTTP status, and recoverability flag. Classification happens
// exactly once, at the HTTP boundary, and is never cached.
package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCategory identifies the class of a failure.
type ErrorCategory string

// Error categories, ordered roughly by classification precedence.
const (
	CategoryValidation     ErrorCategory = "VALIDATION"
	CategoryAuthentication ErrorCategory = "AUTHENTICATION"
	CategoryRateLimit      ErrorCategory = "RATE_LIMIT"
	CategoryServer         ErrorCategory = "SERVER"
	CategoryNetwork        ErrorCategory = "NETWORK"
	CategoryAPI            ErrorCategory = "API"
	CategoryUnknown        ErrorCategory = "UNKNOWN"
)

// Default stable codes per category, used when the originating error
// carries no code of its own.
const (
	codeValidation     = "VALIDATION_ERROR"
	codeAuthentication = "AUTHENTICATION_ERROR"
	codeRateLimit      = "RATE_LIMIT_ERROR"
	codeServer         = "SERVER_ERROR"
	codeNetwork        = "NETWORK_ERROR"
	codeAPI            = "API_ERROR"
	codeUnknown        = "UNKNOWN_ERROR"
)

// ClassifiedError is the stable payload surfaced for any failure.
// Derived fresh on every classification call.
type ClassifiedError struct {
	Category    ErrorCategory `json:"category"`
	Message     string        `json:"message"`
	StatusCode  int           `json:"statusCode"`
	Code        string        `json:"code"`
	Recoverable bool          `json:"recoverable"`
	// RetryAfter is a suggested wait in seconds (0 when absent).
	RetryAfter int `json:"retryAfter,omitempty"`
	// Details preserves the original error text for unclassified failures.
	Details string `json:"details,omitempty"`
}

// Recoverable reports whether a category is worth retrying.
// Only authentication failures are terminal; every other category,
// including UNKNOWN, is considered recoverable.
func Recoverable(category ErrorCategory) bool {
	return category != CategoryAuthentication
}

// statusCarrier is implemented by errors that carry an HTTP status.
// APIError implements it, as do several third-party client errors.
type statusCarrier interface {
	StatusCode() int
}

// Keyword sets for classifying opaque errors, checked in priority order.
var (
	validationKeywords = []string{"required", "invalid", "validation", "must be", "cannot be empty"}
	networkKeywords    = []string{"timeout", "network", "connection", "econnreset", "etimedout"}
	authKeywords       = []string{"unauthorized", "authentication", "api token", "api key"}
	rateLimitKeywords  = []string{"rate limit", "too many requests"}
)

// Classify maps an arbitrary error into a ClassifiedError.
//
// Precedence:
//  1. ValidationError: VALIDATION, message passed through verbatim.
//  2. Typed or status-carrying errors: AUTHENTICATION (401),
//     RATE_LIMIT (429), SERVER (5xx), API (other 4xx).
//  3. NetworkError: NETWORK, message resolved from the code lookup table.
//  4. Opaque errors: keyword inspection of the lowercase message.
//  5. Anything else (including nil): UNKNOWN, original text kept as details.
func Classify(err error) ClassifiedError {
	if err == nil {
		return ClassifiedError{
			Category:    CategoryUnknown,
			Message:     "An unexpected error occurred. Please try again.",
			StatusCode:  http.StatusInternalServerError,
			Code:        codeUnknown,
			Recoverable: Recoverable(CategoryUnknown),
		}
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ClassifiedError{
			Category:    CategoryValidation,
			Message:     validationErr.Message,
			StatusCode:  http.StatusBadRequest,
			Code:        codeValidation,
			Recoverable: Recoverable(CategoryValidation),
		}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Status, apiErr.Message, apiErr.Code, apiErr.RetryAfter)
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return ClassifiedError{
			Category:    CategoryNetwork,
			Message:     NetworkMessageForCode(netErr.Code),
			StatusCode:  http.StatusServiceUnavailable,
			Code:        codeNetwork,
			Recoverable: Recoverable(CategoryNetwork),
		}
	}

	// Generic errors that still expose an HTTP status.
	var carrier statusCarrier
	if errors.As(err, &carrier) {
		if status := carrier.StatusCode(); status >= 400 && status <= 599 {
			return classifyStatus(status, err.Error(), "", 0)
		}
	}

	// Keyword fallback for errors crossing an opaque boundary.
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, validationKeywords):
		return ClassifiedError{
			Category:    CategoryValidation,
			Message:     err.Error(),
			StatusCode:  http.StatusBadRequest,
			Code:        codeValidation,
			Recoverable: Recoverable(CategoryValidation),
		}
	case containsAny(msg, networkKeywords):
		return ClassifiedError{
			Category:    CategoryNetwork,
			Message:     NetworkMessageForCode(""),
			StatusCode:  http.StatusServiceUnavailable,
			Code:        codeNetwork,
			Recoverable: Recoverable(CategoryNetwork),
		}
	case containsAny(msg, authKeywords):
		return ClassifiedError{
			Category:    CategoryAuthentication,
			Message:     "Invalid API token. Please check the service configuration.",
			StatusCode:  http.StatusUnauthorized,
			Code:        codeAuthentication,
			Recoverable: Recoverable(CategoryAuthentication),
		}
	case containsAny(msg, rateLimitKeywords):
		return ClassifiedError{
			Category:    CategoryRateLimit,
			Message:     "Rate limit exceeded. Please try again later.",
			StatusCode:  http.StatusTooManyRequests,
			Code:        codeRateLimit,
			Recoverable: Recoverable(CategoryRateLimit),
		}
	}

	return ClassifiedError{
		Category:    CategoryUnknown,
		Message:     "An unexpected error occurred. Please try again.",
		StatusCode:  http.StatusInternalServerError,
		Code:        codeUnknown,
		Recoverable: Recoverable(CategoryUnknown),
		Details:     err.Error(),
	}
}

// classifyStatus maps an HTTP status from the provider into a category.
func classifyStatus(status int, message, code string, retryAfter int) ClassifiedError {
	switch {
	case status == http.StatusUnauthorized:
		return ClassifiedError{
			Category:    CategoryAuthentication,
			Message:     "Invalid API token. Please check the service configuration.",
			StatusCode:  http.StatusUnauthorized,
			Code:        codeAuthentication,
			Recoverable: Recoverable(CategoryAuthentication),
		}
	case status == http.StatusTooManyRequests:
		msg := "Rate limit exceeded. Please try again later."
		if retryAfter > 0 {
			msg = fmt.Sprintf("Rate limit exceeded. Please try again in %d seconds.", retryAfter)
		}
		return ClassifiedError{
			Category:    CategoryRateLimit,
			Message:     msg,
			StatusCode:  http.StatusTooManyRequests,
			Code:        codeRateLimit,
			Recoverable: Recoverable(CategoryRateLimit),
			RetryAfter:  retryAfter,
		}
	case status >= 500 && status <= 599:
		if message == "" {
			message = "The image service encountered an error. Please try again."
		}
		if code == "" {
			code = codeServer
		}
		return ClassifiedError{
			Category:    CategoryServer,
			Message:     message,
			StatusCode:  status,
			Code:        code,
			Recoverable: Recoverable(CategoryServer),
		}
	default:
		if message == "" {
			message = "The image service rejected the request."
		}
		if code == "" {
			code = codeAPI
		}
		return ClassifiedError{
			Category:    CategoryAPI,
			Message:     message,
			StatusCode:  status,
			Code:        code,
			Recoverable: Recoverable(CategoryAPI),
		}
	}
}

// containsAny reports whether s contains any of the given substrings.
func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
