package types

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikelihoodOrdering(t *testing.T) {
	ordered := []Likelihood{VeryUnlikely, Unlikely, Possible, Likely, VeryLikely}
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i].Stronger(ordered[i-1]),
			"%s should be stronger than %s", ordered[i], ordered[i-1])
		assert.False(t, ordered[i-1].Stronger(ordered[i]))
	}

	// Equal strength counts as stronger so merges are stable.
	assert.True(t, Likely.Stronger(Likely))

	// Unknown strings score as Possible.
	assert.True(t, Possible.Stronger(Likelihood("BOGUS")))
	assert.False(t, Likelihood("BOGUS").Stronger(Likely))
}

func TestLikelihoodScores(t *testing.T) {
	assert.Equal(t, 0.05, VeryUnlikely.Score())
	assert.Equal(t, 0.2, Unlikely.Score())
	assert.Equal(t, 0.5, Possible.Score())
	assert.Equal(t, 0.8, Likely.Score())
	assert.Equal(t, 0.95, VeryLikely.Score())
}

func TestHexRoundTrip(t *testing.T) {
	hex := HexFromRGB(RGB{Red: 66, Green: 133, Blue: 244})
	assert.Equal(t, "#4285f4", hex)
	assert.Equal(t, RGB{Red: 66, Green: 133, Blue: 244}, ParseHex(hex))

	// Values are clamped, not wrapped.
	assert.Equal(t, "#ff0000", HexFromRGB(RGB{Red: 300, Green: -5, Blue: 0}))

	// Malformed input degrades to black instead of erroring.
	assert.Equal(t, RGB{}, ParseHex("nope"))
	assert.Equal(t, RGB{}, ParseHex(""))
}

func TestNewRecordID(t *testing.T) {
	pattern := regexp.MustCompile(`^meditation-\d{13}-\d{1,3}$`)
	require.Regexp(t, pattern, NewRecordID("meditation"))
	require.Regexp(t, regexp.MustCompile(`^upload-\d{13}-\d{1,3}$`), NewRecordID("upload"))
}
