// Package icongen implements icon set generation against a hosted
// text-to-image provider: prompt construction, retry with backoff,
// concurrent fan-out, and PNG validation.
//
// atoms.go contains pure utility functions with no dependencies.
package icongen

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// referenceColor is one entry of the fixed color-naming palette.
type referenceColor struct {
	name    string
	r, g, b int
}

// referencePalette is the fixed 13-entry palette used to name arbitrary
// hex colors. Order is significant only for tie-breaking: the first
// minimum-distance entry wins.
var referencePalette = []referenceColor{
	{"red", 255, 0, 0},
	{"orange", 255, 165, 0},
	{"yellow", 255, 255, 0},
	{"green", 0, 255, 0},
	{"cyan", 0, 255, 255},
	{"blue", 0, 0, 255},
	{"purple", 128, 0, 128},
	{"magenta", 255, 0, 255},
	{"pink", 255, 192, 203},
	{"brown", 165, 42, 42},
	{"gray", 128, 128, 128},
	{"black", 0, 0, 0},
	{"white", 255, 255, 255},
}

// exactMatchDistance is the RGB Euclidean distance below which a color
// is considered a near-exact match of a palette entry and named bare.
const exactMatchDistance = 50.0

// HexToRGB parses a 3- or 6-digit hex color into RGB components.
// The leading # is optional; 3-digit shorthand is expanded by doubling
// each nibble.
func HexToRGB(hex string) (r, g, b int, err error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return 0, 0, 0, fmt.Errorf("icongen: invalid hex color %q: expected 3 or 6 hex digits", hex)
	}

	rv, err := strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("icongen: invalid red channel in %q: %w", hex, err)
	}
	gv, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("icongen: invalid green channel in %q: %w", hex, err)
	}
	bv, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("icongen: invalid blue channel in %q: %w", hex, err)
	}

	return int(rv), int(gv), int(bv), nil
}

// NameColor converts a hex color into a natural-language descriptor
// suitable for inclusion in a text prompt, e.g. "red" or "light pink".
//
// The nearest palette entry by RGB Euclidean distance provides the base
// name. Near-exact matches are named bare; otherwise perceived luma adds
// a light/dark modifier and saturation adds bright/muted.
//
// Pure function: deterministic, no side effects.
func NameColor(hex string) (string, error) {
	r, g, b, err := HexToRGB(hex)
	if err != nil {
		return "", err
	}

	nearest := referencePalette[0]
	minDist := colorDistance(r, g, b, nearest)
	for _, ref := range referencePalette[1:] {
		if d := colorDistance(r, g, b, ref); d < minDist {
			minDist = d
			nearest = ref
		}
	}

	if minDist < exactMatchDistance {
		return nearest.name, nil
	}

	var modifiers []string

	luma := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	if luma > 128 && nearest.name != "white" {
		modifiers = append(modifiers, "light")
	} else if luma < 64 && nearest.name != "black" {
		modifiers = append(modifiers, "dark")
	}

	if sat := saturation(r, g, b); sat > 0.5 {
		if len(modifiers) == 0 {
			modifiers = append(modifiers, "bright")
		}
	} else if nearest.name != "gray" && nearest.name != "brown" {
		modifiers = append(modifiers, "muted")
	}

	return strings.Join(append(modifiers, nearest.name), " "), nil
}

// colorDistance returns the Euclidean distance in RGB space between a
// color and a palette entry.
func colorDistance(r, g, b int, ref referenceColor) float64 {
	dr := float64(r - ref.r)
	dg := float64(g - ref.g)
	db := float64(b - ref.b)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// saturation returns (max-min)/max over the RGB channels, or 0 for black.
func saturation(r, g, b int) float64 {
	max := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if max == 0 {
		return 0
	}

	min := r
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}

	return float64(max-min) / float64(max)
}

// IsLocalEndpoint checks if the given endpoint URL is a local or
// self-hosted endpoint, which cannot serve hosted image generation.
func IsLocalEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	lower := strings.ToLower(endpoint)
	return strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.Contains(lower, "0.0.0.0")
}

// truncateText shortens s to at most max characters, appending an
// ellipsis when truncated. Used to keep log fields readable.
func truncateText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
