package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energia/internal/types"
)

func TestExtractColorsSortsByCoverage(t *testing.T) {
	raw := []wireColorInfo{
		{Color: wireColor{Red: 200}, PixelFraction: 0.1},
		{Color: wireColor{Green: 200}, PixelFraction: 0.5},
		{Color: wireColor{Blue: 200}, PixelFraction: 0.3},
	}

	colors := ExtractColors(raw)
	require.Len(t, colors, 3)
	assert.Equal(t, types.RGB{Green: 200}, colors[0].RGB)
	assert.Equal(t, types.RGB{Blue: 200}, colors[1].RGB)
	assert.Equal(t, types.RGB{Red: 200}, colors[2].RGB)
}

func TestExtractColorsDropsLowCoverage(t *testing.T) {
	raw := []wireColorInfo{
		{Color: wireColor{Red: 200}, PixelFraction: 0.6},
		{Color: wireColor{Green: 200}, PixelFraction: 0.3},
		{Color: wireColor{Blue: 200}, PixelFraction: 0.04},
	}

	colors := ExtractColors(raw)
	require.Len(t, colors, 2)
	for _, c := range colors {
		assert.GreaterOrEqual(t, c.Score, 0.05)
	}
}

func TestExtractColorsCollapsesSimilarShades(t *testing.T) {
	// Two near-identical reds plus a distinct blue.
	raw := []wireColorInfo{
		{Color: wireColor{Red: 200, Green: 10, Blue: 10}, PixelFraction: 0.5},
		{Color: wireColor{Red: 210, Green: 20, Blue: 15}, PixelFraction: 0.3},
		{Color: wireColor{Red: 10, Green: 10, Blue: 220}, PixelFraction: 0.2},
	}

	colors := ExtractColors(raw)
	require.Len(t, colors, 2)
	assert.Equal(t, types.RGB{Red: 200, Green: 10, Blue: 10}, colors[0].RGB)
	assert.Equal(t, types.RGB{Red: 10, Green: 10, Blue: 220}, colors[1].RGB)
}

func TestExtractColorsCapsAtFour(t *testing.T) {
	raw := []wireColorInfo{
		{Color: wireColor{Red: 250}, PixelFraction: 0.3},
		{Color: wireColor{Green: 250}, PixelFraction: 0.25},
		{Color: wireColor{Blue: 250}, PixelFraction: 0.2},
		{Color: wireColor{Red: 250, Green: 250}, PixelFraction: 0.15},
		{Color: wireColor{Red: 250, Blue: 250}, PixelFraction: 0.1},
	}

	assert.Len(t, ExtractColors(raw), 4)
}

func TestExtractColorsPadsSparsePalette(t *testing.T) {
	raw := []wireColorInfo{
		{Color: wireColor{Red: 128, Green: 128, Blue: 128}, PixelFraction: 0.9},
	}

	colors := ExtractColors(raw)
	require.Len(t, colors, 4)
	assert.Equal(t, types.RGB{Red: 128, Green: 128, Blue: 128}, colors[0].RGB)
	assert.Equal(t, "#4285F4", colors[1].Hex)
}

func TestExtractColorsEmptyUsesDefaults(t *testing.T) {
	colors := ExtractColors(nil)
	require.Len(t, colors, 4)
	assert.Equal(t, "#4285F4", colors[0].Hex)
	assert.Equal(t, 0.4, colors[0].Score)
}

func TestColorSentence(t *testing.T) {
	sentence := ColorSentence([]types.Color{
		{Hex: "#ff0000"},
		{Hex: "#0000ff"},
	})
	assert.Equal(t, "Passion, Energy, Strength (Red), Calm, Trust, Serenity (Blue)", sentence)
}

func TestColorSentenceEmptyInput(t *testing.T) {
	assert.Equal(t, defaultColorSentence, ColorSentence(nil))
}

func TestColorSentenceMissingHex(t *testing.T) {
	sentence := ColorSentence([]types.Color{{}})
	assert.Equal(t, "Balanced, Neutral (Gray)", sentence)
}
