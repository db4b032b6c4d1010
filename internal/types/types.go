// Package types holds the shared data model for the analysis pipeline:
// likelihood bands, colors, analysis records and the persisted meditation
// document. Every component consumes these types; none of them own mutable
// shared state.
package types

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Likelihood is the qualitative 5-point confidence scale used for every
// emotion signal. The values match the Vision API's likelihood enum.
type Likelihood string

const (
	VeryUnlikely Likelihood = "VERY_UNLIKELY"
	Unlikely     Likelihood = "UNLIKELY"
	Possible     Likelihood = "POSSIBLE"
	Likely       Likelihood = "LIKELY"
	VeryLikely   Likelihood = "VERY_LIKELY"
)

// Score maps a likelihood band to its fixed numeric value.
// Unknown bands score as Possible, matching the tolerant upstream contract.
func (l Likelihood) Score() float64 {
	switch l {
	case VeryUnlikely:
		return 0.05
	case Unlikely:
		return 0.2
	case Possible:
		return 0.5
	case Likely:
		return 0.8
	case VeryLikely:
		return 0.95
	default:
		return 0.5
	}
}

// Stronger reports whether l outranks other on the 5-point scale.
// Ties count as stronger so a fresh signal wins over a stale equal one.
func (l Likelihood) Stronger(other Likelihood) bool {
	return l.Score() >= other.Score()
}

// RGB is a color triple with each channel in [0, 255].
type RGB struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// Color is one dominant-color entry: the triple, its canonical hex form and
// the pixel-coverage score in [0, 1].
type Color struct {
	RGB   RGB     `json:"rgb"`
	Hex   string  `json:"hex"`
	Score float64 `json:"score"`
}

// HexFromRGB renders a triple as "#RRGGBB" with zero-padded channels.
// Out-of-range channels are clamped so the output always parses back.
func HexFromRGB(rgb RGB) string {
	clamp := func(v int) int {
		if v < 0 {
			return 0
		}
		if v > 255 {
			return 255
		}
		return v
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(rgb.Red), clamp(rgb.Green), clamp(rgb.Blue))
}

// ParseHex converts "#RRGGBB" back to a triple. Parsing is tolerant: any
// malformed input maps to the origin color (black) rather than an error, so
// bad upstream data degrades instead of failing the pipeline.
func ParseHex(hex string) RGB {
	if len(hex) != 7 || hex[0] != '#' {
		return RGB{}
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGB{}
	}
	return RGB{Red: r, Green: g, Blue: b}
}

// AnalysisRecord is the canonical output of image analysis.
type AnalysisRecord struct {
	Emotions       map[string]Likelihood `json:"emotions"`
	Labels         []string              `json:"labels"`
	Objects        []string              `json:"objects"`
	Landmarks      []string              `json:"landmarks"`
	DominantColors []Color               `json:"dominantColors"`
	ColorEmotions  string                `json:"colorEmotions"`

	// Timestamp and RandomSeed guarantee two analyses of the same image
	// never collide.
	Timestamp  string `json:"timestamp,omitempty"`
	RandomSeed string `json:"randomSeed,omitempty"`
}

// Meditation styles and themes the user can pick.
const (
	DefaultStyle = "Calm"
	DefaultTheme = "Nature"
)

// Styles lists the selectable meditation styles.
var Styles = []string{"Calm", "Energetic", "Healing", "Mindful", "Spiritual"}

// Themes lists the selectable meditation themes.
var Themes = []string{"Nature", "Focus", "Relaxation", "Gratitude", "Stress Relief"}

// DefaultUserID is the sentinel identity for unauthenticated use.
const DefaultUserID = "demo-user"

// SyncState tracks where a record lives relative to the remote store.
type SyncState string

const (
	SyncLocalOnly SyncState = "local-only"
	SyncSyncing   SyncState = "syncing"
	SyncSynced    SyncState = "synced"
)

// MeditationRecord is the persisted, user-facing artifact.
// It is created once after narrative generation and never mutated afterwards,
// except to attach the final persisted ID.
type MeditationRecord struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	PhotoURL        string         `json:"photoUrl"`
	VisionResult    AnalysisRecord `json:"visionResult"`
	GeminiGuidance  string         `json:"geminiGuidance"`
	Style           string         `json:"style"`
	Theme           string         `json:"theme"`
	CreatedAt       string         `json:"createdAt,omitempty"`
	ClientTimestamp int64          `json:"clientTimestamp"`

	// Timestamp is the server-assigned creation time when the remote store
	// recorded one. CreatedAt and ClientTimestamp back it up as sort keys.
	Timestamp string `json:"timestamp,omitempty"`

	// UploadID links back to the imageUploads tracking document, if any.
	UploadID string `json:"uploadId,omitempty"`

	Offline  bool `json:"offline,omitempty"`
	NotFound bool `json:"notFound,omitempty"`
}

// UploadRecord tracks a single image upload in the imageUploads collection.
type UploadRecord struct {
	ID               string          `json:"id"`
	UserID           string          `json:"userId"`
	ImageSource      string          `json:"imageSource"`
	Status           string          `json:"status"` // uploaded -> analyzed
	UploadTime       string          `json:"uploadTime,omitempty"`
	ClientUploadTime int64           `json:"clientUploadTime"`
	FileName         string          `json:"fileName,omitempty"`
	FileType         string          `json:"fileType,omitempty"`
	FileSize         int64           `json:"fileSize,omitempty"`
	AnalysisData     *AnalysisRecord `json:"analysisData,omitempty"`
	MeditationID     string          `json:"meditationId,omitempty"`
}

// Queue entry types replayed by the reconciliation pass.
const (
	QueueSaveMeditation      = "saveMeditation"
	QueueTrackImageUpload    = "trackImageUpload"
	QueueUpdateImageAnalysis = "updateImageAnalysis"
)

// QueueEntry is one not-yet-synced mutating operation in the offline queue.
type QueueEntry struct {
	Type     string `json:"type"`
	UploadID string `json:"uploadId,omitempty"`
	// LocalID names the offline cache record this entry supersedes, so a
	// successful replay can flip that record's sync state.
	LocalID   string `json:"localId,omitempty"`
	Payload   []byte `json:"payload"`
	Timestamp int64  `json:"timestamp"`
}

// Sentinel errors shared across the persistence and client layers.
var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("upstream service unavailable")
)

// NewRecordID builds a unique id in the canonical
// <kind>-<epoch-ms>-<random 0-999> format.
func NewRecordID(kind string) string {
	return fmt.Sprintf("%s-%d-%d", kind, time.Now().UnixMilli(), rand.Intn(1000))
}
