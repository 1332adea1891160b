// Package icons implements the flat-file weather icon cache.
//
// Icons are PNG files stored in a single directory, named by the provider's
// icon identifier. An identifier is treated as permanently valid once
// downloaded: entries are never evicted or refreshed. Writes go through a
// temp file and os.Rename so a failed download never leaves a truncated
// file behind; there is no cross-process lock, as the tool is designed for
// single, non-overlapping, schedule-triggered invocations.
package icons

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"rainalert/internal/types"
)

// maxErrorBodyRead limits how much of an upstream error body is included
// in error messages.
const maxErrorBodyRead = 4096

// Cache resolves icon identifiers to local PNG files, downloading on miss.
type Cache struct {
	dir        string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCache creates an icon cache rooted at dir, creating the directory if
// absent. baseURL is the unauthenticated icon host (no trailing slash).
func NewCache(dir, baseURL string, httpClient *http.Client, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create icon cache directory %s: %w", dir, err)
	}
	return &Cache{
		dir:        dir,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Path returns the cache location for an icon identifier.
func (c *Cache) Path(iconID string) string {
	return filepath.Join(c.dir, iconID+".png")
}

// Resolve returns the local path for iconID, downloading the icon on a
// cache miss. Errors here are non-fatal to the run: the caller logs them
// and proceeds without an attachment.
func (c *Cache) Resolve(ctx context.Context, iconID string) (string, error) {
	path := c.Path(iconID)
	if _, err := os.Stat(path); err == nil {
		c.logger.Debug("icon cache hit", "icon", iconID, "path", path)
		return path, nil
	}

	if err := c.download(ctx, iconID, path); err != nil {
		return "", err
	}

	c.logger.Debug("icon cached", "icon", iconID, "path", path)
	return path, nil
}

// download fetches the icon image and persists it atomically at path.
func (c *Cache) download(ctx context.Context, iconID, path string) error {
	iconURL := fmt.Sprintf("%s/%s@2x.png", c.baseURL, iconID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, iconURL, nil)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create icon request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamIcon, "icon request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyRead))
		return types.NewAppError(
			types.ErrCodeUpstreamIcon,
			fmt.Sprintf("icon endpoint returned %d: %s", resp.StatusCode, string(body)),
			nil,
		)
	}

	// The icon host serves static PNGs; reject bodies it explicitly labels
	// as something other than an image.
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return types.NewAppError(
			types.ErrCodeUpstreamIcon,
			fmt.Sprintf("icon endpoint returned unexpected content type %q", ct),
			nil,
		)
	}

	tmp, err := os.CreateTemp(c.dir, iconID+".*.tmp")
	if err != nil {
		return types.NewAppError(types.ErrCodeUpstreamIcon, "failed to create temp file for icon", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return types.NewAppError(types.ErrCodeUpstreamIcon, "failed to write icon body", err)
	}
	if err := tmp.Close(); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamIcon, "failed to flush icon file", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamIcon, "failed to move icon into cache", err)
	}

	return nil
}
