package types

import "time"

// FaceAnnotation carries the per-face emotion likelihoods from image
// analysis, already normalized to the canonical 5-point scale.
type FaceAnnotation struct {
	Joy      Likelihood `json:"joyLikelihood"`
	Sorrow   Likelihood `json:"sorrowLikelihood"`
	Anger    Likelihood `json:"angerLikelihood"`
	Surprise Likelihood `json:"surpriseLikelihood"`
}

// LabelAnnotation is one scene label with its confidence score.
type LabelAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// ObjectAnnotation is one localized object with its confidence score.
type ObjectAnnotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// LandmarkAnnotation is one recognized landmark.
type LandmarkAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// SafeSearchAnnotation carries the content-safety likelihoods.
type SafeSearchAnnotation struct {
	Adult    Likelihood `json:"adult"`
	Spoof    Likelihood `json:"spoof"`
	Medical  Likelihood `json:"medical"`
	Violence Likelihood `json:"violence"`
	Racy     Likelihood `json:"racy"`
}

// VisionResult is the typed, normalized output of a single image analysis
// call. Raw API payloads never cross this boundary.
type VisionResult struct {
	Faces      []FaceAnnotation      `json:"faceAnnotations,omitempty"`
	Labels     []LabelAnnotation     `json:"labelAnnotations,omitempty"`
	Objects    []ObjectAnnotation    `json:"localizedObjectAnnotations,omitempty"`
	Landmarks  []LandmarkAnnotation  `json:"landmarkAnnotations,omitempty"`
	SafeSearch *SafeSearchAnnotation `json:"safeSearchAnnotation,omitempty"`
	Colors     []Color               `json:"dominantColors,omitempty"`

	// Fallback marks a result synthesized locally after analysis failed.
	Fallback bool `json:"fallback,omitempty"`
}

// Selector chooses an index in [0, n). Fallback paths use it to pick
// deterministic-under-test variants instead of reading the wall clock
// inline. n must be positive.
type Selector func(n int) int

// ClockSelector derives the choice from the current time, the behavior
// production paths use.
func ClockSelector(n int) int {
	return int(time.Now().UnixMilli() % int64(n))
}

// FixedSelector always chooses i modulo n.
func FixedSelector(i int) Selector {
	return func(n int) int { return i % n }
}
