package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"energia/internal/emotion"
	"energia/internal/logging"
	"energia/internal/narrative"
	"energia/internal/store"
	"energia/internal/types"
	"energia/internal/vision"
)

// DefaultTimeout bounds one full photo-to-meditation run.
const DefaultTimeout = 30 * time.Second

// Status of a completed run. Even a degraded run produces a meditation;
// Failed only means persistence could not record one at all.
const (
	StatusComplete = "complete"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Request describes one photo to turn into a meditation.
type Request struct {
	ImageURL string
	UserID   string
	Style    string
	Theme    string

	// Optional upload metadata recorded alongside the tracking document.
	FileName string
	FileType string
	FileSize int64
}

// Result reports what one run produced and how.
type Result struct {
	MeditationID string
	UploadID     string
	Meditation   types.MeditationRecord
	Analysis     types.AnalysisRecord

	// NarrativeSource names the generation tier that produced the text.
	NarrativeSource string
	// VisionFallback reports that analysis came from synthesized data.
	VisionFallback bool
	Status         string
}

// Pipeline runs the full photo-to-meditation flow: track the upload,
// analyze the image, extract emotions and colors, generate the narrative,
// and persist everything. Each stage degrades instead of failing, so a
// valid request always yields a readable meditation.
type Pipeline struct {
	analyzer  *vision.Analyzer
	emotions  *emotion.Extractor
	generator *narrative.Generator
	gateway   *store.Gateway
	timeout   time.Duration
}

// New wires the pipeline stages. A zero timeout uses DefaultTimeout.
func New(analyzer *vision.Analyzer, emotions *emotion.Extractor, generator *narrative.Generator, gateway *store.Gateway, timeout time.Duration) *Pipeline {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Pipeline{
		analyzer:  analyzer,
		emotions:  emotions,
		generator: generator,
		gateway:   gateway,
		timeout:   timeout,
	}
}

// Run executes the full flow for one photo.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	timer := logging.StartTimer(logging.CategoryPipeline, "Pipeline.Run")
	defer timer.Stop()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if req.UserID == "" {
		req.UserID = types.DefaultUserID
	}
	if req.Style == "" {
		req.Style = types.DefaultStyle
	}
	if req.Theme == "" {
		req.Theme = types.DefaultTheme
	}

	res := Result{Status: StatusComplete}

	uploadID, err := p.gateway.TrackUpload(ctx, types.UploadRecord{
		UserID:      req.UserID,
		ImageSource: req.ImageURL,
		FileName:    req.FileName,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
	})
	if err != nil {
		logging.PipelineWarn("upload tracking failed, continuing without it: %v", err)
		res.Status = StatusDegraded
	}
	res.UploadID = uploadID

	visionResult := p.analyzer.Analyze(ctx, req.ImageURL)
	res.VisionFallback = visionResult.Fallback
	if visionResult.Fallback {
		res.Status = StatusDegraded
	}

	res.Analysis = p.buildAnalysis(visionResult)
	logging.Pipeline("analysis ready: %d labels, %d emotions, %d colors (fallback=%v)",
		len(res.Analysis.Labels), len(res.Analysis.Emotions), len(res.Analysis.DominantColors), visionResult.Fallback)

	text, source := p.generator.Generate(ctx, res.Analysis, req.Style, req.Theme)
	res.NarrativeSource = source
	if source == narrative.SourceTemplate {
		res.Status = StatusDegraded
	}

	meditation := types.MeditationRecord{
		UserID:         req.UserID,
		PhotoURL:       req.ImageURL,
		VisionResult:   res.Analysis,
		GeminiGuidance: text,
		Style:          req.Style,
		Theme:          req.Theme,
		UploadID:       uploadID,
	}

	// Save batches the analyzed-status update for the tracked upload with
	// the meditation write, so the two documents land together or not at all.
	id, err := p.gateway.Save(ctx, meditation)
	if err != nil {
		logging.PipelineError("failed to persist meditation: %v", err)
		res.Status = StatusFailed
		return res, err
	}
	meditation.ID = id
	res.MeditationID = id
	res.Meditation = meditation

	logging.Pipeline("meditation %s generated via %s (%s)", id, source, res.Status)
	return res, nil
}

// buildAnalysis folds the raw annotations into the persisted analysis
// record. The timestamp and random seed keep two runs over the same image
// distinct all the way into the prompt.
func (p *Pipeline) buildAnalysis(vr types.VisionResult) types.AnalysisRecord {
	colors := vr.Colors
	if len(colors) == 0 {
		colors = vision.DefaultColors()
	}

	labels := make([]string, 0, len(vr.Labels))
	for _, l := range vr.Labels {
		labels = append(labels, l.Description)
	}
	objects := make([]string, 0, len(vr.Objects))
	for _, o := range vr.Objects {
		objects = append(objects, o.Name)
	}
	landmarks := make([]string, 0, len(vr.Landmarks))
	for _, l := range vr.Landmarks {
		landmarks = append(landmarks, l.Description)
	}

	return types.AnalysisRecord{
		Emotions:       p.emotions.Extract(vr),
		Labels:         labels,
		Objects:        objects,
		Landmarks:      landmarks,
		DominantColors: colors,
		ColorEmotions:  vision.ColorSentence(colors),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		RandomSeed:     uuid.NewString(),
	}
}
