// Package narrative turns an image analysis into personalized meditation
// guidance in markdown. Generation is tiered: the Gemini SDK first, then
// an optional backend relay, then built-in templates. The package never
// returns an empty meditation.
package narrative

import (
	"context"
	"strings"

	"energia/internal/logging"
	"energia/internal/types"
)

// ContentGenerator produces text for a prompt. Satisfied by
// GeminiGenerator and by test doubles.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generation sources, reported alongside the meditation text.
const (
	SourceGemini   = "gemini"
	SourceRelay    = "relay"
	SourceTemplate = "template"
)

// Generator runs the tiered meditation generation.
type Generator struct {
	direct   ContentGenerator
	relay    *RelayClient
	selector types.Selector
}

// NewGenerator wires the tiers. Either client may be nil, in which case
// that tier is skipped. A nil selector uses the clock.
func NewGenerator(direct ContentGenerator, relay *RelayClient, selector types.Selector) *Generator {
	if selector == nil {
		selector = types.ClockSelector
	}
	return &Generator{direct: direct, relay: relay, selector: selector}
}

// Generate produces a meditation for the analysis. It always returns
// text; the second return names which tier produced it.
func (g *Generator) Generate(ctx context.Context, analysis types.AnalysisRecord, style, theme string) (string, string) {
	analysis = sanitize(analysis)

	if g.direct != nil {
		timer := logging.StartTimer(logging.CategoryNarrative, "gemini generation")
		text, err := g.direct.Generate(ctx, BuildPrompt(analysis, style, theme))
		timer.Stop()
		if err == nil && strings.TrimSpace(text) != "" {
			logging.Narrative("meditation generated via gemini (%d chars)", len(text))
			return text, SourceGemini
		}
		if err != nil {
			logging.NarrativeWarn("gemini generation failed: %v", err)
		}
	}

	if g.relay != nil {
		text, err := g.relay.Generate(ctx, analysis, style, theme)
		if err == nil && strings.TrimSpace(text) != "" {
			logging.Narrative("meditation generated via relay (%d chars)", len(text))
			return text, SourceRelay
		}
		if err != nil {
			logging.NarrativeWarn("relay generation failed: %v", err)
		}
	}

	logging.Narrative("using built-in meditation template")
	return FallbackMeditation(analysis, style, theme, g.selector), SourceTemplate
}
