package narrative

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"energia/internal/palette"
	"energia/internal/types"
)

// peopleObjects are object names indicating a human presence.
var peopleObjects = map[string]bool{
	"Person": true, "Human": true, "Man": true, "Woman": true,
	"Child": true, "Boy": true, "Girl": true, "People": true,
}

// faceEmotions are emotion keys that only face detection produces.
var faceEmotions = map[string]bool{
	"joy": true, "sorrow": true, "anger": true, "surprise": true,
}

// sanitize fills missing analysis fields with safe defaults so prompt
// construction never trips over partial data.
func sanitize(analysis types.AnalysisRecord) types.AnalysisRecord {
	if len(analysis.Emotions) == 0 {
		analysis.Emotions = map[string]types.Likelihood{
			"calm": types.Likely, "contentment": types.Possible,
		}
	}
	if len(analysis.Labels) == 0 {
		analysis.Labels = []string{"Nature", "Scenery"}
	}
	if len(analysis.Objects) == 0 {
		analysis.Objects = []string{"Plant", "Sky"}
	}
	if len(analysis.DominantColors) == 0 {
		analysis.DominantColors = []types.Color{
			{Hex: "#4285F4", Score: 0.4},
			{Hex: "#34A853", Score: 0.3},
			{Hex: "#FBBC05", Score: 0.2},
			{Hex: "#EA4335", Score: 0.1},
		}
	}
	if analysis.ColorEmotions == "" {
		analysis.ColorEmotions = "Calm, Peace (Blue), Growth, Healing (Green)"
	}
	return analysis
}

// colorNamesFor renders the first three dominant colors as a
// comma-separated list of names.
func colorNamesFor(colors []types.Color) string {
	n := len(colors)
	if n > 3 {
		n = 3
	}
	names := make([]string, 0, n)
	for _, c := range colors[:n] {
		names = append(names, palette.Name(c.Hex))
	}
	return strings.Join(names, ", ")
}

// BuildPrompt assembles the generation prompt from the analysis. The
// timestamp and random seed make every prompt unique so the model never
// caches into sameness.
func BuildPrompt(analysis types.AnalysisRecord, style, theme string) string {
	if style == "" {
		style = types.DefaultStyle
	}
	if theme == "" {
		theme = types.DefaultTheme
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	seed := uuid.NewString()

	emotionsJSON, err := json.Marshal(analysis.Emotions)
	if err != nil {
		emotionsJSON = []byte("{}")
	}

	colorNames := colorNamesFor(analysis.DominantColors)

	hasPeople := false
	for _, obj := range analysis.Objects {
		if peopleObjects[obj] {
			hasPeople = true
			break
		}
	}
	hasFaces := false
	for name := range analysis.Emotions {
		if faceEmotions[name] {
			hasFaces = true
			break
		}
	}

	landmarks := strings.Join(analysis.Landmarks, ", ")
	objects := strings.Join(analysis.Objects, ", ")

	return fmt.Sprintf(`
You are an AI meditation guide. Create a UNIQUE and PERSONALIZED meditation based on:
- Detected emotions: %s
- Environment: %s
- Objects: %s
- Landmarks: %s
- Dominant colors: %s (%s)
- Style: %s
- Theme: %s
- Contains people: %s
- Contains faces: %s
- Timestamp: %s
- Random seed: %s

Instructions:
- Write a meditation in 5-7 steps that is COMPLETELY UNIQUE to this image.
- DEEPLY ANALYZE the image content and create a meditation that directly references SPECIFIC ELEMENTS in the image.
- If landmarks are detected (%s), make them a central focus of the meditation.
- If specific objects are detected (%s), incorporate them meaningfully into the meditation.
- If people are detected, incorporate their expressions, postures, and apparent emotions into the meditation.
- If the image shows a specific location or activity, build the meditation around that specific context.
- Use the emotional qualities of the colors (%s) and detected mood to guide the emotional tone.
- Make it yoga-inspired and mindful, with specific breathing and body awareness instructions.
- Be creative, gentle, and positive, but also very specific to the actual image content.
- DO NOT use generic meditation text - make it highly specific to this image.
- Create a unique title that reflects the specific content of this meditation.
- Each step should be 3-5 sentences long and directly relate to what's in the image.
- Use markdown formatting with # for the title and ## for each step.
- The meditation should feel like it was written specifically for this exact image and no other.
- AVOID REPETITION in language, phrasing, and concepts between steps.
- Each step should focus on a different aspect of the image or a different meditation technique.

IMPORTANT: Your meditation MUST directly reference the specific landmarks, objects, and visual elements detected in the image. Avoid generic meditation text that could apply to any image. Make it clear that this meditation was crafted specifically for THIS image.
`,
		emotionsJSON, strings.Join(analysis.Labels, ", "), objects, landmarks,
		colorNames, analysis.ColorEmotions, style, theme,
		yesNo(hasPeople), yesNo(hasFaces), timestamp, seed,
		landmarks, objects, colorNames)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
