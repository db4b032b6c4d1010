package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"energia/internal/types"
)

// RelayClient generates meditations through a backend relay server when
// direct API access is unavailable (restricted networks, key rotation).
type RelayClient struct {
	baseURL    string
	maxRetries int
	httpClient *http.Client
}

// NewRelayClient creates a relay client for the given backend base URL.
func NewRelayClient(baseURL string, timeout time.Duration, maxRetries int) *RelayClient {
	if timeout == 0 {
		timeout = 25 * time.Second
	}
	return &RelayClient{
		baseURL:    baseURL,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type relayRequest struct {
	UserID       string               `json:"userId"`
	VisionResult types.AnalysisRecord `json:"visionResult"`
	Style        string               `json:"style"`
	Theme        string               `json:"theme"`
}

type relayResponse struct {
	GeminiGuidance string `json:"geminiGuidance"`
}

// Generate asks the relay to produce a meditation for the analysis.
func (c *RelayClient) Generate(ctx context.Context, analysis types.AnalysisRecord, style, theme string) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("relay backend url not configured")
	}

	reqBody := relayRequest{
		UserID:       types.DefaultUserID,
		VisionResult: analysis,
		Style:        style,
		Theme:        theme,
	}

	url := c.baseURL + "/api/photos"

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}

		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("relay request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read relay response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("relay rate limit exceeded (429)")
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("relay request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var relayResp relayResponse
		if err := json.Unmarshal(body, &relayResp); err != nil {
			return "", fmt.Errorf("failed to parse relay response: %w", err)
		}
		if relayResp.GeminiGuidance == "" {
			return "", fmt.Errorf("relay returned no meditation text")
		}
		return relayResp.GeminiGuidance, nil
	}

	return "", lastErr
}
