package vision

import (
	"context"
	"net/http"

	"energia/internal/logging"
	"energia/internal/types"
)

// fallbackLabelSets are the synthesized scene labels used when analysis
// fails outright. The selector picks one set so repeated failures still
// produce varied meditations.
var fallbackLabelSets = [][]string{
	{"Nature", "Sky", "Water", "Tree", "Mountain"},
	{"Beach", "Ocean", "Sand", "Sunset", "Horizon"},
	{"Forest", "Leaves", "Greenery", "Path", "Sunlight"},
	{"City", "Building", "Architecture", "Street", "Urban"},
	{"Garden", "Flower", "Plant", "Grass", "Bloom"},
	{"Desert", "Sand", "Dune", "Arid", "Landscape"},
	{"Lake", "Reflection", "Calm", "Shore", "Peaceful"},
	{"Mountain", "Peak", "Valley", "Rock", "Majestic"},
	{"Meadow", "Field", "Wildflower", "Open space", "Countryside"},
	{"Park", "Bench", "Path", "Recreation", "Leisure"},
}

// Analyzer is the failure-tolerant front door to image analysis: it
// prepares the source, calls the API, and synthesizes a fallback result
// when the API cannot be reached or returns garbage.
type Analyzer struct {
	client   *Client
	fetcher  *http.Client
	selector types.Selector
}

// NewAnalyzer wires a client with the HTTP client used for image fetches
// and the selector used for fallback variety. A nil selector uses the
// clock.
func NewAnalyzer(client *Client, fetcher *http.Client, selector types.Selector) *Analyzer {
	if selector == nil {
		selector = types.ClockSelector
	}
	if fetcher == nil {
		fetcher = http.DefaultClient
	}
	return &Analyzer{client: client, fetcher: fetcher, selector: selector}
}

// Analyze annotates the image at imageURL. It never returns an error:
// any failure yields a synthesized result with Fallback set.
func (a *Analyzer) Analyze(ctx context.Context, imageURL string) types.VisionResult {
	if imageURL == "" {
		logging.VisionWarn("empty image url, using fallback result")
		return a.FallbackResult()
	}

	source := PrepareSource(ctx, a.fetcher, imageURL)
	result, err := a.client.Annotate(ctx, source)
	if err == nil {
		return result
	}
	logging.VisionError("annotation failed: %v", err)

	// An inlined Google Photos image that failed may still work as a
	// remote URI the API fetches itself.
	if source.Content != "" && IsGooglePhotosURL(imageURL) {
		retry := Source{URI: FullResolutionURL(imageURL)}
		result, retryErr := a.client.Annotate(ctx, retry)
		if retryErr == nil {
			return result
		}
		logging.VisionError("remote-uri retry failed: %v", retryErr)
	}

	return a.FallbackResult()
}

// FallbackResult synthesizes a plausible analysis so the pipeline can
// continue without real annotations.
func (a *Analyzer) FallbackResult() types.VisionResult {
	labels := fallbackLabelSets[a.selector(len(fallbackLabelSets))]

	result := types.VisionResult{
		Faces: []types.FaceAnnotation{{
			Joy:      types.Likely,
			Sorrow:   types.Unlikely,
			Anger:    types.VeryUnlikely,
			Surprise: types.Possible,
		}},
		Objects: []types.ObjectAnnotation{
			{Name: "Plant"},
			{Name: "Sky"},
			{Name: "Tree"},
		},
		Colors:   DefaultColors(),
		Fallback: true,
	}
	for _, label := range labels {
		result.Labels = append(result.Labels, types.LabelAnnotation{Description: label})
	}
	return result
}
