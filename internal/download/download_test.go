package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/pepicrft/ubi/internal/forge"
)

func TestFetchToFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, DefaultUserAgent)
		}
		fmt.Fprint(w, "payload")
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), "")
	dest := filepath.Join(t.TempDir(), "asset.tar.gz")

	if err := d.FetchToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("FetchToFile() error = %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("downloaded content = %q, want %q", data, "payload")
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind after successful download")
	}
}

func TestFetchToFileRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, "eventually")
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), "")
	dest := filepath.Join(t.TempDir(), "asset")

	if err := d.FetchToFile(context.Background(), server.URL, dest); err != nil {
		t.Fatalf("FetchToFile() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read downloaded file: %v", err)
	}
	if string(data) != "eventually" {
		t.Errorf("downloaded content = %q, want %q", data, "eventually")
	}
}

func TestFetchToFileGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDownloader(server.Client(), "")
	d.retries = 1
	dest := filepath.Join(t.TempDir(), "asset")

	err := d.FetchToFile(context.Background(), server.URL, dest)
	if err == nil {
		t.Fatal("FetchToFile() error = nil, want failure")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Errorf("dest file exists after failed download")
	}
}

func TestFetchToFileHonorsContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownloader(server.Client(), "")
	err := d.FetchToFile(ctx, server.URL, filepath.Join(t.TempDir(), "asset"))
	if err != context.Canceled {
		t.Errorf("FetchToFile() error = %v, want context.Canceled", err)
	}
}

func TestFetchAssetUsesCache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, "cached payload")
	}))
	defer server.Close()

	assetURL, err := url.Parse(server.URL + "/releases/download/v1.0.0/tool.tar.gz")
	if err != nil {
		t.Fatalf("parse asset URL: %v", err)
	}
	asset := forge.Asset{Name: "tool.tar.gz", URL: assetURL}

	d := NewDownloader(server.Client(), t.TempDir())

	first, err := d.FetchAsset(context.Background(), asset)
	if err != nil {
		t.Fatalf("first FetchAsset() error = %v", err)
	}
	second, err := d.FetchAsset(context.Background(), asset)
	if err != nil {
		t.Fatalf("second FetchAsset() error = %v", err)
	}

	if first != second {
		t.Errorf("cache paths differ: %q vs %q", first, second)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
	if filepath.Base(first) != "tool.tar.gz" {
		t.Errorf("cached file name = %q, want %q", filepath.Base(first), "tool.tar.gz")
	}
}

func TestFetchAssetRejectsNilURL(t *testing.T) {
	d := NewDownloader(http.DefaultClient, "")
	_, err := d.FetchAsset(context.Background(), forge.Asset{Name: "no-url"})
	if err == nil {
		t.Fatal("FetchAsset() error = nil, want failure for nil URL")
	}
}
