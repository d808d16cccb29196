// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// prompt.go builds the exact prompt sent to the external model from the
// user text, a style preset, and optional brand colors.
package icongen

import (
	"fmt"
	"strings"
)

// modifierFilterTerms mark style modifiers that would contradict an
// explicit color instruction. When brand colors are supplied, any
// modifier whose lowercase form contains one of these terms is dropped.
var modifierFilterTerms = []string{"color", "vibrant", "muted", "pastel"}

// BuildPrompt combines the user prompt, style modifiers, and named brand
// colors into the single prompt string sent to the model.
//
// The user prompt, every retained modifier, and every color name appear
// verbatim as substrings of the output. Raw hex codes never appear.
func BuildPrompt(userPrompt string, style *StylePreset, brandColors []string) (string, error) {
	if style == nil {
		return "", fmt.Errorf("icongen: style cannot be nil")
	}
	prompt := strings.TrimSpace(userPrompt)
	if prompt == "" {
		return "", fmt.Errorf("icongen: prompt cannot be empty")
	}

	modifiers := style.PromptModifiers
	colorClause := ""

	if len(brandColors) > 0 {
		names := make([]string, len(brandColors))
		for i, hex := range brandColors {
			name, err := NameColor(hex)
			if err != nil {
				return "", fmt.Errorf("icongen: failed to name brand color: %w", err)
			}
			names[i] = name
		}
		colorClause = colorClauseFor(names)
		modifiers = filterModifiers(modifiers)
	}

	var b strings.Builder
	b.WriteString("A simple, clean icon of ")
	b.WriteString(prompt)
	b.WriteString(colorClause)
	if joined := strings.Join(modifiers, ", "); joined != "" {
		b.WriteString(", ")
		b.WriteString(joined)
	}
	b.WriteString(", 512x512 pixels, icon design, centered, white background")

	return b.String(), nil
}

// colorClauseFor builds the color instruction inserted directly after
// the user prompt:
//
//	1 color  -> " in red color"
//	2 colors -> " in red and blue colors"
//	3+       -> " in red, blue, and green colors"
func colorClauseFor(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return fmt.Sprintf(" in %s color", names[0])
	case 2:
		return fmt.Sprintf(" in %s and %s colors", names[0], names[1])
	default:
		head := strings.Join(names[:len(names)-1], ", ")
		return fmt.Sprintf(" in %s, and %s colors", head, names[len(names)-1])
	}
}

// filterModifiers drops style modifiers that would contradict an
// explicit color palette instruction.
func filterModifiers(modifiers []string) []string {
	kept := make([]string, 0, len(modifiers))
	for _, m := range modifiers {
		lower := strings.ToLower(m)
		conflicting := false
		for _, term := range modifierFilterTerms {
			if strings.Contains(lower, term) {
				conflicting = true
				break
			}
		}
		if !conflicting {
			kept = append(kept, m)
		}
	}
	return kept
}
