// Package emotion distills a normalized image analysis into a map of
// emotion names to likelihood bands. Signals are layered: face detection
// first, then scene labels, localized objects and content-safety hints,
// with weaker signals never overwriting stronger ones. The result is
// never empty.
package emotion

import (
	"strings"

	"energia/internal/logging"
	"energia/internal/types"
)

// emotionKeywords maps emotion names to label keywords that imply them.
var emotionKeywords = map[string][]string{
	"peaceful":   {"peaceful", "calm", "serene", "tranquil", "zen", "meditation", "yoga", "relax"},
	"joyful":     {"happy", "joy", "smile", "laugh", "cheerful", "celebration", "party"},
	"energetic":  {"energy", "active", "dynamic", "vibrant", "exercise", "sport", "fitness"},
	"creative":   {"art", "creative", "colorful", "design", "paint", "music", "dance"},
	"reflective": {"thoughtful", "contemplative", "pensive", "quiet", "solitude", "nature"},
	"focused":    {"focus", "concentration", "study", "work", "attention", "mindful"},
	"spiritual":  {"spiritual", "prayer", "worship", "sacred", "divine", "temple", "church", "ritual"},
}

// objectEmotions maps detected object names to the emotions they suggest.
var objectEmotions = map[string]map[string]types.Likelihood{
	"Person":             {"social": types.Likely},
	"Book":               {"focused": types.Likely, "reflective": types.Possible},
	"Musical Instrument": {"creative": types.Likely, "joyful": types.Possible},
	"Sports Equipment":   {"energetic": types.Likely},
	"Yoga Mat":           {"peaceful": types.Likely, "focused": types.Likely},
	"Meditation Cushion": {"peaceful": types.VeryLikely, "spiritual": types.Likely},
	"Candle":             {"peaceful": types.Possible, "spiritual": types.Possible},
	"Nature":             {"peaceful": types.Likely, "reflective": types.Possible},
	"Water":              {"peaceful": types.Likely, "reflective": types.Possible},
	"Mountain":           {"peaceful": types.Likely, "spiritual": types.Possible},
	"Forest":             {"peaceful": types.Likely, "reflective": types.Possible},
}

// backfillCandidates pads sparse results up to the minimum key count.
var backfillCandidates = []string{
	"peaceful", "energetic", "focused", "creative", "reflective",
	"spiritual", "balanced", "mindful", "grounded", "inspired",
}

// minEmotions is the minimum number of keys a result carries before
// backfill stops.
const minEmotions = 5

// Extractor turns vision results into emotion maps. The zero value is not
// usable; construct with New.
type Extractor struct {
	selector types.Selector
}

// New returns an Extractor using the given selector for backfill and
// default-set choices. A nil selector falls back to the clock.
func New(selector types.Selector) *Extractor {
	if selector == nil {
		selector = types.ClockSelector
	}
	return &Extractor{selector: selector}
}

// Extract derives the emotion map from a normalized analysis result.
// The returned map always has at least one entry.
func (e *Extractor) Extract(result types.VisionResult) map[string]types.Likelihood {
	emotions := make(map[string]types.Likelihood)

	if len(result.Faces) > 0 {
		logging.PipelineDebug("deriving emotions from %d face(s)", len(result.Faces))
		e.applyFace(emotions, result.Faces[0])
	}

	e.applyLabels(emotions, result.Labels)
	e.applyObjects(emotions, result.Objects)
	e.applySafeSearch(emotions, result.SafeSearch)

	if len(emotions) < minEmotions {
		e.backfill(emotions)
	}

	if len(emotions) == 0 {
		logging.PipelineDebug("no emotion signals, using default set")
		return e.DefaultSet()
	}

	return emotions
}

// applyFace records the primary face emotions and derives calm,
// contentment and melancholy from their numeric scores.
func (e *Extractor) applyFace(emotions map[string]types.Likelihood, face types.FaceAnnotation) {
	joy := orDefault(face.Joy, types.Possible)
	sorrow := orDefault(face.Sorrow, types.Unlikely)
	anger := orDefault(face.Anger, types.VeryUnlikely)
	surprise := orDefault(face.Surprise, types.Possible)

	emotions["joy"] = joy
	emotions["sorrow"] = sorrow
	emotions["anger"] = anger
	emotions["surprise"] = surprise

	// Calm is the inverse of agitation (anger or surprise).
	calm := 1 - max(anger.Score(), surprise.Score())
	emotions["calm"] = band(calm, 0.7, 0.4)

	// Contentment is joy without surprise.
	contentment := joy.Score() * (1 - surprise.Score())
	emotions["contentment"] = band(contentment, 0.7, 0.4)

	// Melancholy is sorrow without anger.
	melancholy := sorrow.Score() * (1 - anger.Score())
	emotions["melancholy"] = band(melancholy, 0.6, 0.3)
}

func (e *Extractor) applyLabels(emotions map[string]types.Likelihood, labels []types.LabelAnnotation) {
	for _, label := range labels {
		if label.Description == "" {
			continue
		}
		desc := strings.ToLower(label.Description)
		for name, keywords := range emotionKeywords {
			matched := false
			for _, keyword := range keywords {
				if strings.Contains(desc, keyword) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			score := label.Score
			if score == 0 {
				score = 0.5
			}
			merge(emotions, name, band(score, 0.7, 0.4))
		}
	}
}

func (e *Extractor) applyObjects(emotions map[string]types.Likelihood, objects []types.ObjectAnnotation) {
	for _, obj := range objects {
		mapping, ok := objectEmotions[obj.Name]
		if !ok {
			continue
		}
		for name, likelihood := range mapping {
			merge(emotions, name, likelihood)
		}
	}
}

func (e *Extractor) applySafeSearch(emotions map[string]types.Likelihood, ss *types.SafeSearchAnnotation) {
	if ss == nil {
		return
	}
	if ss.Spoof == types.Likely || ss.Spoof == types.VeryLikely {
		emotions["playful"] = types.Likely
		emotions["joyful"] = types.Possible
	}
	if ss.Medical == types.Likely || ss.Medical == types.VeryLikely {
		emotions["concerned"] = types.Possible
	}
}

// backfill adds up to three candidate emotions so sparse results still
// give the narrative generator enough material. The first added candidate
// gets Likely, the rest Possible. Existing keys are never touched.
func (e *Extractor) backfill(emotions map[string]types.Likelihood) {
	seed := e.selector(10)
	for i := 0; i < 3; i++ {
		name := backfillCandidates[(seed+i)%len(backfillCandidates)]
		if _, exists := emotions[name]; exists {
			continue
		}
		if i == 0 {
			emotions[name] = types.Likely
		} else {
			emotions[name] = types.Possible
		}
	}
}

// DefaultSet returns one of four canned emotion sets, chosen by the
// selector. Used when extraction produces nothing at all.
func (e *Extractor) DefaultSet() map[string]types.Likelihood {
	sets := []map[string]types.Likelihood{
		{
			"joy":         types.Likely,
			"sorrow":      types.Unlikely,
			"anger":       types.VeryUnlikely,
			"surprise":    types.Possible,
			"calm":        types.Likely,
			"contentment": types.Likely,
		},
		{
			"joy":        types.Possible,
			"sorrow":     types.Unlikely,
			"anger":      types.Unlikely,
			"surprise":   types.Likely,
			"excitement": types.Likely,
			"creative":   types.Likely,
		},
		{
			"joy":        types.VeryLikely,
			"sorrow":     types.VeryUnlikely,
			"anger":      types.VeryUnlikely,
			"surprise":   types.Likely,
			"excitement": types.VeryLikely,
			"peaceful":   types.Possible,
		},
		{
			"joy":        types.Possible,
			"sorrow":     types.Possible,
			"anger":      types.Unlikely,
			"surprise":   types.Unlikely,
			"calm":       types.Likely,
			"reflective": types.Likely,
		},
	}
	return sets[e.selector(len(sets))]
}

// merge assigns a likelihood only when it is at least as strong as the
// existing one.
func merge(emotions map[string]types.Likelihood, name string, likelihood types.Likelihood) {
	if existing, ok := emotions[name]; ok && !likelihood.Stronger(existing) {
		return
	}
	emotions[name] = likelihood
}

// band converts a numeric score into a likelihood with the given
// Likely/Possible thresholds.
func band(score, likelyAbove, possibleAbove float64) types.Likelihood {
	switch {
	case score > likelyAbove:
		return types.Likely
	case score > possibleAbove:
		return types.Possible
	default:
		return types.Unlikely
	}
}

func orDefault(l, fallback types.Likelihood) types.Likelihood {
	if l == "" {
		return fallback
	}
	return l
}
