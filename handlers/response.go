// Package handlers provides the HTTP API for the icon generation
// backend. This file contains the JSON response envelope helpers.
package handlers

import (
	"encoding/json"
	"net/http"

	"icon_backend/core"
)

// SuccessResponse is the envelope for successful generation requests.
type SuccessResponse struct {
	Success bool                 `json:"success"`
	Icons   []core.GeneratedIcon `json:"icons"`
}

// ErrorResponse is the envelope for failed requests. The error payload
// is the classified error, so clients always see the same shape
// regardless of where the failure originated.
type ErrorResponse struct {
	Success bool                 `json:"success"`
	Error   core.ClassifiedError `json:"error"`
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding failures at this point cannot be reported to the client.
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes the error envelope using the
// classified status code.
func writeError(w http.ResponseWriter, err error) {
	classified := core.Classify(err)
	writeJSON(w, classified.StatusCode, ErrorResponse{Success: false, Error: classified})
}

// writeErrorStatus writes a pre-built classified error. Used where the
// handler already knows the category, e.g. method checks.
func writeErrorStatus(w http.ResponseWriter, classified core.ClassifiedError) {
	writeJSON(w, classified.StatusCode, ErrorResponse{Success: false, Error: classified})
}

// methodNotAllowed builds the classified payload for a wrong HTTP method.
func methodNotAllowed(allowed string) core.ClassifiedError {
	return core.ClassifiedError{
		Category:    core.CategoryValidation,
		Message:     "Method not allowed. Use " + allowed + ".",
		StatusCode:  http.StatusMethodNotAllowed,
		Code:        "METHOD_NOT_ALLOWED",
		Recoverable: core.Recoverable(core.CategoryValidation),
	}
}
