// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// styles.go defines the built-in style presets and the StyleRegistry
// molecule that resolves style ids, with optional YAML overrides.
package icongen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StylePreset is a named bundle of short text phrases that bias the
// model's visual output. Presets are read-only and shared by reference
// across all concurrent calls of a request; they are never mutated.
type StylePreset struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	PromptModifiers []string `json:"promptModifiers" yaml:"promptModifiers"`
}

// builtinStyles are the five default presets.
var builtinStyles = []StylePreset{
	{
		ID:              "flat",
		Name:            "Flat",
		Description:     "Clean flat design with simple solid shapes",
		PromptModifiers: []string{"flat design", "minimalist", "solid colors", "geometric shapes"},
	},
	{
		ID:              "line",
		Name:            "Line Art",
		Description:     "Simple single-weight outline icons",
		PromptModifiers: []string{"line art", "outline style", "thin strokes", "monochrome"},
	},
	{
		ID:              "3d",
		Name:            "3D",
		Description:     "Dimensional icons with depth and soft lighting",
		PromptModifiers: []string{"3d render", "soft shadows", "glossy finish"},
	},
	{
		ID:              "gradient",
		Name:            "Gradient",
		Description:     "Smooth modern gradient fills",
		PromptModifiers: []string{"gradient fill", "smooth color transitions", "modern", "vibrant colors"},
	},
	{
		ID:              "pixel",
		Name:            "Pixel",
		Description:     "Retro 8-bit pixel art",
		PromptModifiers: []string{"pixel art", "8-bit", "retro", "limited color palette"},
	},
}

// StyleRegistry resolves style ids to presets.
//
// Thread Safety: the registry is immutable after construction and safe
// for concurrent use.
type StyleRegistry struct {
	styles []*StylePreset
	byID   map[string]*StylePreset
}

// NewStyleRegistry creates a registry containing the built-in presets.
func NewStyleRegistry() *StyleRegistry {
	return newRegistry(builtinStyles)
}

// NewStyleRegistryFromFile creates a registry from a YAML file holding a
// list of presets, replacing the built-in set entirely. Returns an error
// if the file cannot be read, is not valid YAML, or defines no presets.
func NewStyleRegistryFromFile(path string) (*StyleRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("icongen: failed to read styles file: %w", err)
	}

	var styles []StylePreset
	if err := yaml.Unmarshal(data, &styles); err != nil {
		return nil, fmt.Errorf("icongen: failed to parse styles file: %w", err)
	}
	if len(styles) == 0 {
		return nil, fmt.Errorf("icongen: styles file %s defines no presets", path)
	}
	for i, s := range styles {
		if s.ID == "" {
			return nil, fmt.Errorf("icongen: styles file entry %d has no id", i)
		}
	}

	return newRegistry(styles), nil
}

func newRegistry(styles []StylePreset) *StyleRegistry {
	r := &StyleRegistry{
		styles: make([]*StylePreset, 0, len(styles)),
		byID:   make(map[string]*StylePreset, len(styles)),
	}
	for i := range styles {
		s := styles[i]
		r.styles = append(r.styles, &s)
		r.byID[s.ID] = &s
	}
	return r
}

// Find returns the preset for the given id.
func (r *StyleRegistry) Find(id string) (*StylePreset, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Styles returns all presets in definition order.
func (r *StyleRegistry) Styles() []*StylePreset {
	return r.styles
}

// IDs returns all preset ids in definition order.
func (r *StyleRegistry) IDs() []string {
	ids := make([]string, len(r.styles))
	for i, s := range r.styles {
		ids[i] = s.ID
	}
	return ids
}
