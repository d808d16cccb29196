// Package core provides shared types, configuration, and error handling
// for the icon generation backend.
//
// types.go contains atom-level type definitions with no behavior.
package core

// GenerationRequest is a parsed request for one icon set.
// It is immutable once validated; the orchestration layer never mutates it.
type GenerationRequest struct {
	// Prompt is the user-supplied description of the icon subject.
	// Must be non-empty and contain at least one alphanumeric character.
	Prompt string `json:"prompt"`

	// StyleID identifies one of the built-in style presets.
	StyleID string `json:"style"`

	// BrandColors is an optional ordered list of hex colors (#RGB or #RRGGBB).
	BrandColors []string `json:"brandColors,omitempty"`
}

// GeneratedIcon is one successfully generated icon.
// Created only on a successful individual generation; never mutated afterwards.
type GeneratedIcon struct {
	// ID uniquely identifies this icon within and across requests.
	ID string `json:"id"`

	// URL is the temporary image URL returned by the provider.
	URL string `json:"url"`

	// Prompt is the original user prompt, not the constructed model prompt.
	Prompt string `json:"prompt"`

	// Style is the style preset id the icon was generated with.
	Style string `json:"style"`

	// GeneratedAt is the creation time in epoch milliseconds.
	GeneratedAt int64 `json:"generatedAt"`
}
