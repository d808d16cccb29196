// Package icongen implements icon set generation against a hosted
// text-to-image provider.
//
// downloader.go implements the Downloader molecule that fetches
// generated images from the temporary URLs returned by providers.
// Those URLs typically expire within an hour.
package icongen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDownloadBytes caps the in-memory download size. Generated icons
// are small; anything larger indicates a wrong URL.
const maxDownloadBytes = 32 << 20

// Downloader fetches image bytes over HTTP.
//
// Thread Safety: safe for concurrent use; each download creates its
// own request.
type Downloader struct {
	client *http.Client
}

// NewDownloader creates a downloader using the given HTTP client.
// A nil client falls back to a default with a 60 second timeout.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Downloader{client: client}
}

// DownloadBytes fetches the resource at url and returns the body bytes
// and the Content-Type header value.
func (d *Downloader) DownloadBytes(ctx context.Context, url string) ([]byte, string, error) {
	if url == "" {
		return nil, "", fmt.Errorf("icongen: URL cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("icongen: failed to create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("icongen: failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("icongen: download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("icongen: failed to read image data: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
