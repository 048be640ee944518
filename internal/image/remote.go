package image

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmylchreest/palsnap/internal/version"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// IsRemote reports whether path is an HTTP(S) URL.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// Fetch retrieves content from a URL with context and timeout support.
func Fetch(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	client := &http.Client{
		Timeout: timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// cachedFilename creates a deterministic filename from a URL:
// a SHA256 prefix of the URL plus its original extension.
func cachedFilename(url string) string {
	hash := sha256.Sum256([]byte(url))
	name := fmt.Sprintf("%x", hash[:16])

	ext := filepath.Ext(url)
	if idx := strings.IndexByte(ext, '?'); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 {
		ext = ".jpg"
	}

	return name + ext
}

// DownloadAndCache downloads a remote image into dir and returns the local
// path. An image already cached for the same URL is reused.
func DownloadAndCache(ctx context.Context, url, dir string) (string, error) {
	if !IsRemote(url) {
		return "", fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create image cache directory: %w", err)
	}

	cachedPath := filepath.Join(dir, cachedFilename(url))
	if _, err := os.Stat(cachedPath); err == nil {
		return cachedPath, nil
	}

	data, err := Fetch(ctx, url, 0)
	if err != nil {
		return "", &ReadError{Path: url, Err: fmt.Errorf("failed to download image: %w", err)}
	}

	if err := os.WriteFile(cachedPath, data, 0o644); err != nil { // #nosec G306 - Cache files need standard read permissions
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}

	return cachedPath, nil
}
