package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"energia/internal/logging"
)

// Source is a prepared image input for annotation: either inline base64
// content or a remote URI the API fetches itself. Exactly one is set.
type Source struct {
	Content string
	URI     string
}

// IsGooglePhotosURL reports whether a URL points at Google Photos.
func IsGooglePhotosURL(url string) bool {
	return url != "" && strings.Contains(url, "googleusercontent.com")
}

// FullResolutionURL rewrites a Google Photos URL to request the original
// size (=d). Other URLs pass through unchanged.
func FullResolutionURL(url string) string {
	if !IsGooglePhotosURL(url) {
		return url
	}
	base, _, _ := strings.Cut(url, "=")
	return base + "=d"
}

// ThumbnailURL rewrites a Google Photos URL to a 100x100 thumbnail.
func ThumbnailURL(url string) string {
	if !IsGooglePhotosURL(url) {
		return url
	}
	base, _, _ := strings.Cut(url, "=")
	return base + "=w100-h100"
}

// MediumURL rewrites a Google Photos URL to a 500x500 rendition.
func MediumURL(url string) string {
	if !IsGooglePhotosURL(url) {
		return url
	}
	base, _, _ := strings.Cut(url, "=")
	return base + "=w500-h500"
}

// DataURLBase64 extracts the base64 payload from a data URL. Non-data
// inputs pass through unchanged.
func DataURLBase64(dataURL string) string {
	if strings.HasPrefix(dataURL, "data:") {
		if _, b64, ok := strings.Cut(dataURL, ","); ok {
			return b64
		}
		return ""
	}
	return dataURL
}

// maxInlineImageBytes caps how much of a fetched image is inlined.
const maxInlineImageBytes = 20 << 20

// PrepareSource turns an image URL into an annotation source.
//
// Data URLs inline their base64 payload directly. Google Photos URLs are
// fetched at full resolution and inlined; if the fetch fails the URL is
// passed to the API as a remote URI instead. Any other URL is always
// passed as a remote URI.
func PrepareSource(ctx context.Context, client *http.Client, imageURL string) Source {
	if strings.HasPrefix(imageURL, "data:") {
		return Source{Content: DataURLBase64(imageURL)}
	}

	if IsGooglePhotosURL(imageURL) {
		full := FullResolutionURL(imageURL)
		content, err := fetchAsBase64(ctx, client, full)
		if err != nil {
			logging.VisionWarn("google photos fetch failed, falling back to remote uri: %v", err)
			return Source{URI: full}
		}
		logging.VisionDebug("inlined google photos image (%d base64 chars)", len(content))
		return Source{Content: content}
	}

	return Source{URI: imageURL}
}

// fetchAsBase64 downloads an image and returns its base64 encoding.
func fetchAsBase64(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInlineImageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("empty image body")
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
