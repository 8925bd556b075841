// Package download fetches resolved release assets over HTTP with
// retries, atomic writes, and a local download cache. It sits outside
// the forge layer: asset resolution is a single uncached request, while
// asset payloads are large and worth caching and retrying.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pepicrft/ubi/internal/forge"
)

const (
	// DefaultRetries is the number of additional attempts after a
	// failed download.
	DefaultRetries = 3
	// DefaultUserAgent is the User-Agent header sent with requests.
	DefaultUserAgent = "ubi/1.0"
)

// Downloader fetches asset payloads through a shared HTTP client.
// Request and response timeouts are the client's responsibility.
type Downloader struct {
	client    *http.Client
	cacheDir  string
	userAgent string
	retries   int
}

// NewDownloader creates a downloader that caches fetched assets under
// cacheDir. An empty cacheDir disables caching.
func NewDownloader(client *http.Client, cacheDir string) *Downloader {
	return &Downloader{
		client:    client,
		cacheDir:  cacheDir,
		userAgent: DefaultUserAgent,
		retries:   DefaultRetries,
	}
}

// FetchAsset downloads one resolved asset and returns the local path of
// the payload. Downloads are cached by asset URL, so repeated installs
// of the same release skip the network.
func (d *Downloader) FetchAsset(ctx context.Context, asset forge.Asset) (string, error) {
	if asset.URL == nil {
		return "", fmt.Errorf("asset %q has no URL", asset.Name)
	}

	if d.cacheDir == "" {
		tmp, err := os.MkdirTemp("", "ubi-asset-*")
		if err != nil {
			return "", fmt.Errorf("create download dir: %w", err)
		}
		path := filepath.Join(tmp, asset.Name)
		if err := d.FetchToFile(ctx, asset.URL.String(), path); err != nil {
			return "", err
		}
		return path, nil
	}

	key := sha256.Sum256([]byte(asset.URL.String()))
	entryDir := filepath.Join(d.cacheDir, hex.EncodeToString(key[:8]))
	cachePath := filepath.Join(entryDir, asset.Name)
	if fileExists(cachePath) {
		return cachePath, nil
	}

	lock, err := acquireCacheLock(entryDir)
	if err != nil {
		return "", err
	}
	defer lock.release()

	// Another process may have filled the entry while we waited for
	// the lock.
	if fileExists(cachePath) {
		return cachePath, nil
	}
	if err := d.FetchToFile(ctx, asset.URL.String(), cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// FetchToFile downloads a URL to destPath, retrying with exponential
// backoff on failure. The file appears atomically: it is written to a
// temp path and renamed into place only on success.
func (d *Downloader) FetchToFile(ctx context.Context, url, destPath string) error {
	var lastErr error

	for attempt := 0; attempt <= d.retries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if attempt > 0 {
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err := d.fetchOnce(ctx, url, destPath)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("download failed after %d retries: %w", d.retries, lastErr)
}

func (d *Downloader) fetchOnce(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	cleanupNeeded := true
	defer func() {
		tmpFile.Close()
		if cleanupNeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		return fmt.Errorf("copy response body: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	cleanupNeeded = false
	return nil
}

// fileExists checks if a file exists and is not empty.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}
