// Package core provides shared types, configuration, and error handling
// for the icon generation backend.
//
// validate.go validates inbound generation requests before any provider
// call is made. Validation failures short-circuit the whole request.
package core

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// hexColorPattern matches #RGB and #RRGGBB, case-insensitive.
var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

// IsValidHexColor reports whether s is a #RGB or #RRGGBB hex color.
func IsValidHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// hasAlphanumeric reports whether s contains at least one letter or digit.
func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// ValidateGenerationRequest checks a parsed request against the inbound
// contract: a non-empty prompt with at least one alphanumeric character,
// a known style id, and well-formed hex colors.
//
// Returns a *ValidationError describing the first failure found, or nil.
func ValidateGenerationRequest(req *GenerationRequest, validStyleIDs []string) error {
	if req == nil {
		return NewValidationError("Request body is required")
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return &ValidationError{Field: "prompt", Message: "Prompt cannot be empty"}
	}
	if !hasAlphanumeric(prompt) {
		return &ValidationError{Field: "prompt", Message: "Prompt must contain at least one alphanumeric character"}
	}

	if req.StyleID == "" {
		return &ValidationError{Field: "style", Message: "Style is required"}
	}
	known := false
	for _, id := range validStyleIDs {
		if id == req.StyleID {
			known = true
			break
		}
	}
	if !known {
		return &ValidationError{
			Field:   "style",
			Message: fmt.Sprintf("Unknown style %q. Valid styles: %s", req.StyleID, strings.Join(validStyleIDs, ", ")),
		}
	}

	for i, c := range req.BrandColors {
		if !IsValidHexColor(c) {
			return &ValidationError{
				Field:   "brandColors",
				Message: fmt.Sprintf("Invalid hex color at position %d: %q. Colors must match #RGB or #RRGGBB", i, c),
			}
		}
	}

	return nil
}
