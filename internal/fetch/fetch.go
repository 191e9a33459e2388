// SPDX-License-Identifier: MPL-2.0

// Package fetch downloads installer artifacts into the shared scratch
// directory. Downloads are cached by filename: an artifact that is already
// present on disk is never requested again.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"
)

const (
	// defaultTimeout bounds a single artifact download. Installers are
	// large, so this is generous.
	defaultTimeout = 30 * time.Minute

	// maxArtifactBytes is the upper bound on a downloaded installer (2 GB).
	// Prevents unbounded disk consumption from a misbehaving server.
	maxArtifactBytes = 2 << 30

	userAgent = "pyforge"
)

type (
	// Fetcher retrieves a URL into a destination directory and returns the
	// local file path.
	Fetcher interface {
		Fetch(ctx context.Context, rawURL, destDir string) (string, error)
	}

	// HTTPFetcher is the production Fetcher. The zero value is usable.
	HTTPFetcher struct {
		// Client overrides the HTTP client, useful for tests.
		Client *http.Client
		// MaxBytes overrides the artifact size limit, useful for tests.
		MaxBytes int64
	}

	// Recorder is a Fetcher for tests: it records requested URLs and writes
	// the configured content instead of touching the network.
	Recorder struct {
		// URLs holds every fetched URL in order.
		URLs []string
		// Content is written to the destination file. Keyed by URL; the
		// empty key is the fallback.
		Content map[string][]byte
		// Err, when non-nil, is returned for every fetch.
		Err error
	}
)

// Filename returns the base filename a URL downloads to.
func Filename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("download URL %q has no filename", rawURL)
	}
	return name, nil
}

// Fetch implements Fetcher. The destination file is the URL's base filename
// inside destDir; if it already exists the cached path is returned without
// any network request. A partial download never becomes visible under the
// final name.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	name, err := Filename(rawURL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s failed with status %s", rawURL, resp.Status)
	}

	partial := dest + ".partial"
	out, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}

	limit := f.MaxBytes
	if limit == 0 {
		limit = maxArtifactBytes
	}

	// Read one byte past the limit so an oversized artifact is an error
	// rather than a silently truncated file.
	n, err := io.Copy(out, io.LimitReader(resp.Body, limit+1))
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}
	if n > limit {
		_ = os.Remove(partial)
		return "", fmt.Errorf("download of %s exceeds the %d byte limit", rawURL, limit)
	}

	if err := os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return "", fmt.Errorf("failed to finalize download: %w", err)
	}
	return dest, nil
}

// Fetch implements Fetcher.
func (r *Recorder) Fetch(_ context.Context, rawURL, destDir string) (string, error) {
	r.URLs = append(r.URLs, rawURL)
	if r.Err != nil {
		return "", r.Err
	}
	name, err := Filename(rawURL)
	if err != nil {
		return "", err
	}
	content, ok := r.Content[rawURL]
	if !ok {
		content = r.Content[""]
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return "", err
	}
	return dest, nil
}
