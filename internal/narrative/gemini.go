package narrative

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"energia/internal/config"
)

// GeminiGenerator produces meditation text through the Gemini SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
	cfg    config.NarrativeConfig
}

// NewGeminiGenerator creates the SDK-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg config.NarrativeConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, cfg: cfg}, nil
}

// Generate runs the prompt and returns the meditation markdown.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	temperature := float32(g.cfg.Temperature)
	if temperature == 0 {
		temperature = 0.9
	}
	topP := float32(g.cfg.TopP)
	if topP == 0 {
		topP = 0.9
	}
	topK := float32(g.cfg.TopK)
	if topK == 0 {
		topK = 40
	}
	maxTokens := int32(g.cfg.MaxOutputTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopP:            genai.Ptr(topP),
		TopK:            genai.Ptr(topK),
		MaxOutputTokens: maxTokens,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
		},
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("no meditation text returned")
	}
	return text, nil
}
