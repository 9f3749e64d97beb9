// Package fetch downloads rustdoc JSON published by docs.rs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jcdickinson/ferrisdoc/internal/config"
	"github.com/klauspost/compress/zstd"
)

// ErrNotFound indicates docs.rs has no rustdoc JSON for the crate version.
var ErrNotFound = errors.New("rustdoc JSON not found")

const userAgent = "ferrisdoc/0.1.0"

// Client downloads rustdoc JSON and keeps a compressed copy in a cache
// directory.
type Client struct {
	baseURL  string
	http     *http.Client
	cacheDir string
}

// New returns a client for cfg caching into cacheDir. An empty cacheDir
// disables caching.
func New(cfg config.FetchConfig, cacheDir string) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultExternalBaseURL
	}
	return &Client{
		baseURL:  strings.TrimSuffix(base, "/"),
		http:     &http.Client{Timeout: timeout},
		cacheDir: cacheDir,
	}
}

// ParseCrateSpec splits "name@version" into its parts. The version
// defaults to "latest".
func ParseCrateSpec(spec string) (name, version string) {
	name, version, _ = strings.Cut(spec, "@")
	if version == "" {
		version = "latest"
	}
	return name, version
}

// Fetch returns the uncompressed rustdoc JSON for name at version, from
// the cache when present. "latest" is resolved by docs.rs and never cached.
func (c *Client) Fetch(ctx context.Context, name, version string) ([]byte, error) {
	if version == "" {
		version = "latest"
	}
	cacheable := c.cacheDir != "" && version != "latest"
	if cacheable {
		if data, err := LoadCache(c.cacheDir, name, version); err == nil {
			slog.Debug("using cached rustdoc JSON", "crate", name, "version", version)
			return data, nil
		}
	}

	data, err := c.download(ctx, name, version)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := SaveCache(c.cacheDir, data, name, version); err != nil {
			slog.Warn("caching rustdoc JSON failed", "crate", name, "version", version, "error", err)
		}
	}
	return data, nil
}

func (c *Client) download(ctx context.Context, name, version string) ([]byte, error) {
	url := fmt.Sprintf("%s/crate/%s/%s/json", c.baseURL, name, version)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	slog.Debug("fetching rustdoc JSON", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s@%s", ErrNotFound, name, version)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("docs.rs returned %d for %s/%s: %s", resp.StatusCode, name, version, string(body))
	}

	// docs.rs returns zstd-compressed JSON
	decoder, err := zstd.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("decompressing rustdoc JSON: %w", err)
	}
	return data, nil
}
