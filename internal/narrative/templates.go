package narrative

import (
	"sort"
	"strings"

	"energia/internal/types"
)

// templateSlots are the values substituted into an offline template.
type templateSlots struct {
	Focus            string // primary scene label
	Secondary        string
	Tertiary         string
	Object           string // primary detected object
	Emotion          string // dominant emotion, lowercase
	EmotionTitle     string // dominant emotion, title case
	SecondaryEmotion string
	Colors           string // comma-separated color names
	FirstColor       string
	Style            string
	Theme            string
}

// buildSlots derives template slots from the analysis. Labels and
// emotions are chosen deterministically for a given selector so repeated
// fallbacks with different seeds still vary.
func buildSlots(analysis types.AnalysisRecord, style, theme string, selector types.Selector) templateSlots {
	labels := analysis.Labels
	if len(labels) == 0 {
		labels = []string{"Nature", "Scenery"}
	}
	objects := analysis.Objects
	if len(objects) == 0 {
		objects = []string{"Plant", "Sky"}
	}

	focus := labels[selector(len(labels))]
	secondary := focus
	if len(labels) > 1 {
		secondary = labels[1]
	}
	tertiary := secondary
	if len(labels) > 2 {
		tertiary = labels[2]
	}

	// Strongest emotion wins; ties resolve by name order so the choice is
	// stable across runs.
	primaryEmotion := "calm"
	secondaryEmotion := "peaceful"
	names := make([]string, 0, len(analysis.Emotions))
	for name := range analysis.Emotions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		l := analysis.Emotions[name]
		if l == types.VeryLikely || l == types.Likely {
			primaryEmotion = name
		}
	}
	for _, name := range names {
		if name == primaryEmotion {
			continue
		}
		l := analysis.Emotions[name]
		if l == types.Possible || l == types.Likely {
			secondaryEmotion = name
		}
	}

	colors := colorNamesFor(analysis.DominantColors)
	if colors == "" {
		colors = "Blue, Green, Yellow"
	}
	firstColor, _, _ := strings.Cut(colors, ",")

	if style == "" {
		style = types.DefaultStyle
	}
	if theme == "" {
		theme = types.DefaultTheme
	}

	return templateSlots{
		Focus:            focus,
		Secondary:        secondary,
		Tertiary:         tertiary,
		Object:           objects[0],
		Emotion:          primaryEmotion,
		EmotionTitle:     titleCase(primaryEmotion),
		SecondaryEmotion: secondaryEmotion,
		Colors:           colors,
		FirstColor:       strings.TrimSpace(firstColor),
		Style:            style,
		Theme:            theme,
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// FallbackMeditation renders one of the built-in meditation templates,
// personalized with whatever the analysis detected. Used when every
// generation tier fails.
func FallbackMeditation(analysis types.AnalysisRecord, style, theme string, selector types.Selector) string {
	if selector == nil {
		selector = types.ClockSelector
	}
	analysis = sanitize(analysis)
	slots := buildSlots(analysis, style, theme, selector)

	tpl := meditationTemplates[selector(len(meditationTemplates))]
	return strings.NewReplacer(
		"{focus}", slots.Focus,
		"{secondary}", slots.Secondary,
		"{tertiary}", slots.Tertiary,
		"{object}", slots.Object,
		"{emotion}", slots.Emotion,
		"{Emotion}", slots.EmotionTitle,
		"{secondaryEmotion}", slots.SecondaryEmotion,
		"{colors}", slots.Colors,
		"{firstColor}", slots.FirstColor,
		"{style}", slots.Style,
		"{theme}", slots.Theme,
	).Replace(tpl)
}

var meditationTemplates = []string{
	`# Finding {Emotion} Through {focus} and {secondary}

## Step 1: Centering with {focus}
Take a deep breath and feel your body settling into this moment as you gaze at the {focus}. Notice the sensations in your body as you begin to relax - perhaps a tingling in your fingertips or a softening in your shoulders. Allow your mind to focus specifically on the {focus} before you, noticing its unique details and qualities.

## Step 2: Color Awareness
Observe the beautiful colors in the image - {colors} - and how they create a sense of {emotion}. These colors aren't random; they're speaking directly to your emotional state right now. Let these specific colors wash over you, bringing their unique energy into your awareness. Feel yourself becoming more present with each breath.

## Step 3: Connecting with {secondary}
Now shift your attention to the {secondary} in the image. Imagine yourself within this scene, surrounded by both the {focus} and {secondary}. What specific sounds might you hear in this exact environment? What textures would you feel if you could reach out and touch the {object}? Allow all your senses to engage with this specific environment.

## Step 4: Embodying {emotion} and {secondaryEmotion}
As you breathe deeply, embody the qualities of {emotion} and {secondaryEmotion} that this specific image evokes. Let these feelings spread through your entire body, from your toes to the crown of your head. With each inhale, draw in more of the energy of {focus}; with each exhale, release any tension that blocks these feelings.

## Step 5: Integration and Intention
Carry the specific sense of {emotion} from this {focus} image with you as you slowly prepare to return to your day. Set an intention to notice instances of {secondary} in your daily life, using them as reminders to reconnect with this feeling. Know that you can return to this specific meditation whenever you need to reconnect with the essence of {focus} and {secondary}.`,

	`# {style} Journey: From {focus} to {secondary}

## Step 1: Mindful Arrival
Close your eyes and imagine standing before the {focus} from the image, with the {secondary} nearby. Feel the specific ground beneath your feet - is it soft earth, smooth stone, or something else entirely? Notice the air around you, perhaps cool or warm against your skin. Take three deep breaths to arrive fully in this moment, breathing in the essence of this specific scene.

## Step 2: Color Exploration
With each breath, explore the specific colors of this scene - {colors}. These aren't just any colors; they're the exact palette of your image. Notice how these particular colors affect your mood and create a sense of {emotion}. Allow yourself to be drawn deeper into this experience as you breathe with the rhythm of the {focus} and {secondary}.

## Step 3: Absorption of {object}
Let the quality of {emotion} from the {object} fill your entire being. Your body softens, your mind quiets, and you become one with the energy of this specific {focus}. This is a place of perfect harmony between you and the elements in this image. Feel the boundaries between observer and observed beginning to dissolve.

## Step 4: Transformation Through {tertiary}
As you continue breathing deeply, feel yourself transforming through your connection with the {tertiary} aspect of the image. The boundaries between you and what you're observing begin to dissolve. You are becoming more {emotion}, more aligned with the essence of {theme} as expressed in this specific image. Your body knows exactly how to integrate this energy.

## Step 5: Gratitude for This Specific Moment
Before you return, take a moment to express gratitude for this specific experience with {focus} and {secondary}. Thank the elements in this image for sharing their wisdom and energy with you. Know that this particular connection remains available to you always - you need only recall the {colors} colors and the feeling of {emotion} to return here.`,

	`# The {Emotion} Path: Meditation with {focus} and {object}

## Step 1: Grounding in the Image
Begin by settling into a comfortable position, imagining yourself physically present in the scene with the {focus}. Feel the weight of your body supported as if you were actually there. Bring to mind the specific details of the {focus} and {object} and allow them to fill your awareness completely. Notice the exact quality of light in this scene.

## Step 2: Immersion in {colors}
Notice the beautiful colors - {colors} - that make up this specific image. These aren't generic colors but the exact palette that creates the mood of this scene. Each color carries its own energy and wisdom specific to this moment. Breathe in these colors and let them nourish your being, perhaps feeling the {firstColor} most strongly in your heart center.

## Step 3: Emotional Resonance with {secondaryEmotion}
As you continue to breathe with this image, connect with the feeling of {emotion} and {secondaryEmotion} that arises. These emotions aren't random - they're gifts from the specific {focus} and {object} in this image, offering you exactly what you need in this moment. Feel how your body naturally responds to these qualities.

## Step 4: Deepening Through {secondary}
With each breath, deepen your connection to {emotion} and the specific elements of {focus} and {secondary}. Feel yourself becoming more aligned with the essence of {theme} as it's expressed in this unique image. Your body and mind are in perfect harmony with the specific energy signature of this scene.

## Step 5: Carrying This Specific Wisdom Forward
As this meditation comes to a close, know that you can carry the energy of this specific {focus} and the feeling of {emotion} with you throughout your day. The wisdom of {secondary} and {object} is now part of you. When you encounter challenges today, recall the {colors} colors and the specific quality of {emotion} from this image.`,

	`# The Wisdom of {focus} and {secondary}: A {style} Meditation

## Step 1: Invitation to This Specific Scene
Invite yourself to be fully present with the image of {focus} alongside {secondary}. Take three deep breaths, allowing your body to relax and your mind to become receptive to the wisdom being offered by this specific combination of elements. Feel yourself stepping into the scene, becoming part of its unique energy field.

## Step 2: Visual Journey Through {colors}
Explore the specific colors of this image - {colors}. These aren't random colors but the exact palette that creates the mood and energy of this scene. Each shade has something unique to teach you about {emotion} and {secondaryEmotion}. Notice how these colors create these specific feelings within you, perhaps concentrating in particular areas of your body.

## Step 3: Embodied Presence With {object}
As you breathe with the image of {focus} and {object}, allow the quality of {emotion} to enter your body through your breath. Feel it in your chest, your belly, your limbs - wherever it naturally wants to go. You are becoming an embodiment of this energy, not in a generic way, but in the specific way that this unique image expresses it.

## Step 4: Receiving Guidance From This Specific Image
In this state of receptive awareness, listen for any messages or insights that this specific combination of {focus}, {secondary}, and {object} might have for you. What wisdom is being offered by these particular elements in this exact arrangement? What do you need to know right now about {emotion} or {secondaryEmotion}?

## Step 5: Integration of This Unique Experience
Slowly begin to return to your surroundings, bringing with you the gifts of {emotion} from {focus} and the wisdom of {secondary}. These qualities aren't generic - they're the specific energetic signature of this image. They are now part of your inner landscape, available whenever you need them. Simply recall the {colors} colors to reconnect.`,

	`# Embracing {theme} Through the Specific Wisdom of {focus}

## Step 1: Arriving in This Moment
Take a moment to arrive fully in your body as you connect with this specific image. Feel your breath moving in and out, perhaps imagining it taking on the colors of {colors}. Bring your attention to the {focus} and {object} and allow them to fill your field of awareness. Notice the unique quality of presence they offer.

## Step 2: Sensing the Specific Energy
Notice the colors present in this image - {colors}. Feel how these specific colors affect your energy and emotions in this moment. There is a quality of {emotion} here that is available to you, not as a generic concept, but as the specific expression found in this unique combination of {focus} and {secondary}.

## Step 3: Opening to {secondary}
With each breath, open yourself more fully to the essence of {secondary} as it appears in this image. Let go of any resistance or tension that might block this connection. You are safe to receive the gifts being offered in this moment by this specific scene. Feel your heart center softening and expanding to receive this energy.

## Step 4: Receiving the Wisdom of {object}
As you continue to breathe with {focus} and {object}, receive the quality of {emotion} into your heart. Let it spread throughout your entire being, transforming you from the inside out. This isn't a generic energy but the specific frequency of {emotion} as expressed through the unique elements of this image.

## Step 5: Embodying This Specific Energy
Before you complete this meditation, make a commitment to embody the energy of {emotion} from {focus} and the wisdom of {secondary} in your daily life. You are now a living expression of {theme}, not in a generic way, but in the specific way that this unique image has revealed to you. Carry the colors {colors} with you as reminders.`,
}
