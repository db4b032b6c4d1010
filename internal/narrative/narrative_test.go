package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energia/internal/types"
)

func sampleAnalysis() types.AnalysisRecord {
	return types.AnalysisRecord{
		Emotions: map[string]types.Likelihood{
			"joy":      types.VeryLikely,
			"calm":     types.Likely,
			"peaceful": types.Possible,
		},
		Labels:  []string{"Beach", "Ocean", "Sunset"},
		Objects: []string{"Palm Tree", "Person"},
		DominantColors: []types.Color{
			{Hex: "#4169e1", Score: 0.5},
			{Hex: "#ffd700", Score: 0.3},
		},
		ColorEmotions: "Nobility, Richness, Trust (Royal Blue)",
	}
}

func TestBuildPromptIncludesAnalysis(t *testing.T) {
	prompt := BuildPrompt(sampleAnalysis(), "Calm", "Nature")

	assert.Contains(t, prompt, "Beach, Ocean, Sunset")
	assert.Contains(t, prompt, "Palm Tree, Person")
	assert.Contains(t, prompt, "Royal Blue, Gold")
	assert.Contains(t, prompt, "- Style: Calm")
	assert.Contains(t, prompt, "- Theme: Nature")
	assert.Contains(t, prompt, "Contains people: Yes")
	assert.Contains(t, prompt, "Contains faces: Yes")
	assert.Contains(t, prompt, `"joy":"VERY_LIKELY"`)
}

func TestBuildPromptNoPeopleNoFaces(t *testing.T) {
	analysis := sampleAnalysis()
	analysis.Objects = []string{"Rock"}
	analysis.Emotions = map[string]types.Likelihood{"peaceful": types.Likely}

	prompt := BuildPrompt(analysis, "", "")

	assert.Contains(t, prompt, "Contains people: No")
	assert.Contains(t, prompt, "Contains faces: No")
	assert.Contains(t, prompt, "- Style: Calm")
	assert.Contains(t, prompt, "- Theme: Nature")
}

func TestBuildPromptUniquePerCall(t *testing.T) {
	a := BuildPrompt(sampleAnalysis(), "Calm", "Nature")
	b := BuildPrompt(sampleAnalysis(), "Calm", "Nature")
	assert.NotEqual(t, a, b, "random seed should differ between prompts")
}

var stepHeading = regexp.MustCompile(`(?m)^## Step \d`)

func TestFallbackMeditationStructure(t *testing.T) {
	for i := 0; i < len(meditationTemplates); i++ {
		text := FallbackMeditation(sampleAnalysis(), "Calm", "Nature", types.FixedSelector(i))

		assert.Equal(t, 1, strings.Count(text, "\n# ")+boolToInt(strings.HasPrefix(text, "# ")),
			"template %d should have exactly one title", i)
		assert.Len(t, stepHeading.FindAllString(text, -1), 5, "template %d", i)
		assert.NotContains(t, text, "{focus}", "template %d left a slot unfilled", i)
		assert.NotContains(t, text, "{emotion}", "template %d left a slot unfilled", i)
		assert.NotContains(t, text, "{colors}", "template %d left a slot unfilled", i)
	}
}

func TestFallbackMeditationSubstitutesSlots(t *testing.T) {
	text := FallbackMeditation(sampleAnalysis(), "Calm", "Nature", types.FixedSelector(0))

	// Selector 0 picks the first label as focus.
	assert.Contains(t, text, "Beach")
	assert.Contains(t, text, "Ocean")
	// Strongest emotion is joy (VERY_LIKELY).
	assert.Contains(t, text, "joy")
	assert.Contains(t, text, "# Finding Joy Through Beach and Ocean")
	assert.Contains(t, text, "Royal Blue, Gold")
}

func TestFallbackMeditationEmptyAnalysis(t *testing.T) {
	text := FallbackMeditation(types.AnalysisRecord{}, "", "", types.FixedSelector(1))

	assert.True(t, strings.HasPrefix(text, "# "))
	assert.Contains(t, text, "Nature")
	assert.NotContains(t, text, "{")
}

type stubGenerator struct {
	text string
	err  error
}

func (s stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.text, s.err
}

func TestGeneratorUsesDirectTier(t *testing.T) {
	g := NewGenerator(stubGenerator{text: "# A Meditation\n\n## Step 1\nBreathe."}, nil, types.FixedSelector(0))

	text, source := g.Generate(context.Background(), sampleAnalysis(), "Calm", "Nature")

	assert.Equal(t, SourceGemini, source)
	assert.Contains(t, text, "# A Meditation")
}

func TestGeneratorFallsBackToRelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/photos", r.URL.Path)
		var req relayRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Calm", req.Style)
		json.NewEncoder(w).Encode(relayResponse{GeminiGuidance: "# Relay Meditation"})
	}))
	defer server.Close()

	relay := NewRelayClient(server.URL, 0, 0)
	g := NewGenerator(stubGenerator{err: errors.New("quota exhausted")}, relay, types.FixedSelector(0))

	text, source := g.Generate(context.Background(), sampleAnalysis(), "Calm", "Nature")

	assert.Equal(t, SourceRelay, source)
	assert.Equal(t, "# Relay Meditation", text)
}

func TestGeneratorFallsBackToTemplate(t *testing.T) {
	relay := NewRelayClient("http://127.0.0.1:1", 0, 0)
	g := NewGenerator(stubGenerator{err: errors.New("boom")}, relay, types.FixedSelector(2))

	text, source := g.Generate(context.Background(), sampleAnalysis(), "Calm", "Nature")

	assert.Equal(t, SourceTemplate, source)
	assert.True(t, strings.HasPrefix(text, "# "))
	assert.Len(t, stepHeading.FindAllString(text, -1), 5)
}

func TestGeneratorNoTiersConfigured(t *testing.T) {
	g := NewGenerator(nil, nil, types.FixedSelector(0))

	text, source := g.Generate(context.Background(), types.AnalysisRecord{}, "", "")

	assert.Equal(t, SourceTemplate, source)
	assert.NotEmpty(t, text)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
