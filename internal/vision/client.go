// Package vision analyzes photos through the Google Vision REST API and
// normalizes the raw annotations into the typed result the rest of the
// pipeline consumes. Analysis degrades rather than fails: when every
// approach is exhausted a synthesized fallback result is returned.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"energia/internal/config"
	"energia/internal/logging"
	"energia/internal/types"
)

// Client calls the images:annotate endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	maxRetries int
	httpClient *http.Client
}

// NewClient creates a Vision API client from config.
func NewClient(cfg config.VisionConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://vision.googleapis.com/v1/images:annotate"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Annotate runs the full feature set against one image and returns the
// normalized result.
func (c *Client) Annotate(ctx context.Context, source Source) (types.VisionResult, error) {
	if c.apiKey == "" {
		return types.VisionResult{}, fmt.Errorf("vision api key not configured")
	}

	payload := imagePayload{}
	switch {
	case source.Content != "":
		payload.Content = source.Content
	case source.URI != "":
		payload.Source = &imageSource{ImageURI: source.URI}
	default:
		return types.VisionResult{}, fmt.Errorf("empty image source")
	}

	reqBody := annotateRequest{
		Requests: []annotateEntry{{
			Image: payload,
			Features: []feature{
				{Type: "FACE_DETECTION", MaxResults: 20},
				{Type: "LABEL_DETECTION", MaxResults: 30},
				{Type: "IMAGE_PROPERTIES", MaxResults: 20},
				{Type: "OBJECT_LOCALIZATION", MaxResults: 30},
				{Type: "LANDMARK_DETECTION", MaxResults: 20},
				{Type: "WEB_DETECTION", MaxResults: 15},
				{Type: "TEXT_DETECTION", MaxResults: 20},
				{Type: "DOCUMENT_TEXT_DETECTION"},
				{Type: "CROP_HINTS"},
				{Type: "SAFE_SEARCH_DETECTION"},
			},
			ImageContext: &imageContext{
				LanguageHints:   []string{"en"},
				CropHintsParams: &cropHintsParams{AspectRatios: []float64{0.8, 1.0, 1.2}},
				// Global bounding box improves landmark recall.
				LatLongRect: &latLongRect{
					MinLatLng: latLng{Latitude: -90.0, Longitude: -180.0},
					MaxLatLng: latLng{Latitude: 90.0, Longitude: 180.0},
				},
			},
		}},
	}

	url := fmt.Sprintf("%s?key=%s", c.endpoint, c.apiKey)

	// Retry loop for rate limits and transient failures
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return types.VisionResult{}, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return types.VisionResult{}, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return types.VisionResult{}, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var annotated annotateResponse
		if err := json.Unmarshal(body, &annotated); err != nil {
			return types.VisionResult{}, fmt.Errorf("failed to parse response: %w", err)
		}

		if annotated.Error != nil {
			return types.VisionResult{}, fmt.Errorf("API error: %s", annotated.Error.Message)
		}
		if len(annotated.Responses) == 0 {
			return types.VisionResult{}, fmt.Errorf("empty annotation response")
		}
		first := annotated.Responses[0]
		if first.Error != nil {
			return types.VisionResult{}, fmt.Errorf("annotation failed: %s", first.Error.Message)
		}

		logging.Vision("annotated image: %d faces, %d labels, %d objects, %d landmarks",
			len(first.FaceAnnotations), len(first.LabelAnnotations),
			len(first.LocalizedObjectAnnotations), len(first.LandmarkAnnotations))

		return normalize(first), nil
	}

	return types.VisionResult{}, lastErr
}

// normalize converts the raw wire result into the typed pipeline form.
// Unknown likelihood strings drop to empty so downstream defaults apply.
func normalize(raw annotationResult) types.VisionResult {
	result := types.VisionResult{}

	for _, f := range raw.FaceAnnotations {
		result.Faces = append(result.Faces, types.FaceAnnotation{
			Joy:      parseLikelihood(f.JoyLikelihood),
			Sorrow:   parseLikelihood(f.SorrowLikelihood),
			Anger:    parseLikelihood(f.AngerLikelihood),
			Surprise: parseLikelihood(f.SurpriseLikelihood),
		})
	}
	for _, l := range raw.LabelAnnotations {
		if l.Description == "" {
			continue
		}
		result.Labels = append(result.Labels, types.LabelAnnotation{Description: l.Description, Score: l.Score})
	}
	for _, o := range raw.LocalizedObjectAnnotations {
		if o.Name == "" {
			continue
		}
		result.Objects = append(result.Objects, types.ObjectAnnotation{Name: o.Name, Score: o.Score})
	}
	for _, lm := range raw.LandmarkAnnotations {
		if lm.Description == "" {
			continue
		}
		result.Landmarks = append(result.Landmarks, types.LandmarkAnnotation{Description: lm.Description, Score: lm.Score})
	}
	if raw.SafeSearch != nil {
		result.SafeSearch = &types.SafeSearchAnnotation{
			Adult:    parseLikelihood(raw.SafeSearch.Adult),
			Spoof:    parseLikelihood(raw.SafeSearch.Spoof),
			Medical:  parseLikelihood(raw.SafeSearch.Medical),
			Violence: parseLikelihood(raw.SafeSearch.Violence),
			Racy:     parseLikelihood(raw.SafeSearch.Racy),
		}
	}
	if raw.ImageProperties != nil {
		result.Colors = ExtractColors(raw.ImageProperties.DominantColors.Colors)
	}

	return result
}

func parseLikelihood(s string) types.Likelihood {
	switch types.Likelihood(s) {
	case types.VeryUnlikely, types.Unlikely, types.Possible, types.Likely, types.VeryLikely:
		return types.Likelihood(s)
	default:
		return ""
	}
}
