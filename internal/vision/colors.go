package vision

import (
	"math"
	"sort"
	"strings"

	"energia/internal/palette"
	"energia/internal/types"
)

// colorSimilarityThreshold is the summed per-channel difference below
// which two colors count as shades of the same color.
const colorSimilarityThreshold = 90

// maxDistinctColors caps the palette shown to the user.
const maxDistinctColors = 4

// ExtractColors reduces the raw dominant-color annotation to at most four
// visually distinct colors, ordered by pixel coverage. Near-duplicates are
// collapsed and low-coverage colors dropped; a degenerate result is padded
// from the default palette.
func ExtractColors(raw []wireColorInfo) []types.Color {
	if len(raw) == 0 {
		return DefaultColors()
	}

	colors := make([]types.Color, 0, len(raw))
	sorted := make([]wireColorInfo, len(raw))
	copy(sorted, raw)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PixelFraction > sorted[j].PixelFraction
	})

	for _, c := range sorted {
		rgb := types.RGB{
			Red:   int(math.Round(c.Color.Red)),
			Green: int(math.Round(c.Color.Green)),
			Blue:  int(math.Round(c.Color.Blue)),
		}
		colors = append(colors, types.Color{
			RGB:   rgb,
			Hex:   types.HexFromRGB(rgb),
			Score: c.PixelFraction,
		})
	}

	// Drop colors covering less than 5% of pixels.
	filtered := colors[:0]
	for _, c := range colors {
		if c.Score >= 0.05 {
			filtered = append(filtered, c)
		}
	}

	// Collapse similar shades, keeping the highest-coverage representative.
	grouped := make([]types.Color, 0, maxDistinctColors)
	for _, c := range filtered {
		similar := false
		for _, existing := range grouped {
			rDiff := abs(existing.RGB.Red - c.RGB.Red)
			gDiff := abs(existing.RGB.Green - c.RGB.Green)
			bDiff := abs(existing.RGB.Blue - c.RGB.Blue)
			if rDiff+gDiff+bDiff < colorSimilarityThreshold {
				similar = true
				break
			}
		}
		if similar {
			continue
		}
		grouped = append(grouped, c)
		if len(grouped) >= maxDistinctColors {
			break
		}
	}

	// Too few distinct colors reads as a broken palette; pad with defaults.
	if len(grouped) < 2 {
		for _, d := range DefaultColors() {
			if len(grouped) >= maxDistinctColors {
				break
			}
			grouped = append(grouped, d)
		}
	}

	return grouped
}

// DefaultColors is the palette used when extraction yields nothing usable.
func DefaultColors() []types.Color {
	return []types.Color{
		{RGB: types.RGB{Red: 66, Green: 133, Blue: 244}, Hex: "#4285F4", Score: 0.4},
		{RGB: types.RGB{Red: 52, Green: 168, Blue: 83}, Hex: "#34A853", Score: 0.3},
		{RGB: types.RGB{Red: 251, Green: 188, Blue: 5}, Hex: "#FBBC05", Score: 0.2},
		{RGB: types.RGB{Red: 234, Green: 67, Blue: 53}, Hex: "#EA4335", Score: 0.1},
	}
}

// defaultColorSentence describes the default palette.
const defaultColorSentence = "Calm, Peace (Blue), Growth, Healing (Green), Joy, Happiness (Yellow), Passion, Strength (Red)"

// ColorSentence renders a palette as a human-readable emotional summary,
// one "Emotion, Emotion (Name)" clause per color.
func ColorSentence(colors []types.Color) string {
	if len(colors) == 0 {
		return defaultColorSentence
	}

	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		if c.Hex == "" {
			parts = append(parts, "Balanced, Neutral (Gray)")
			continue
		}
		info := palette.Describe(c.Hex)
		parts = append(parts, info.Emotion+" ("+info.Name+")")
	}
	return strings.Join(parts, ", ")
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
