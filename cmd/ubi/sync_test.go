package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, luaCode string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ubi.lua")
	if err := os.WriteFile(path, []byte(luaCode), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestRunSyncEndToEnd(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/owner/alpha/releases/latest":
			fmt.Fprintf(w, `{"assets": [{"name": "alpha.bin", "browser_download_url": %q}]}`,
				server.URL+"/dl/alpha.bin")
		case "/repos/owner/beta/releases/tags/v2.0.0":
			fmt.Fprintf(w, `{"assets": [{"name": "beta.bin", "browser_download_url": %q}]}`,
				server.URL+"/dl/beta.bin")
		case "/dl/alpha.bin":
			w.Write([]byte("alpha contents"))
		case "/dl/beta.bin":
			w.Write([]byte("beta contents"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	destDir := t.TempDir()
	manifestPath := writeManifest(t, fmt.Sprintf(`
ubi = {
    tools = {
        { project = "owner/alpha", forge = "forgejo", url = %q, asset = "alpha.bin" },
        { project = "owner/beta", forge = "forgejo", url = %q, tag = "v2.0.0", asset = "beta.bin" },
    },
    options = { dest = %q },
}
`, server.URL, server.URL, destDir))

	if err := runSync([]string{"--file", manifestPath}); err != nil {
		t.Fatalf("runSync() error = %v", err)
	}

	for name, want := range map[string]string{
		"alpha.bin": "alpha contents",
		"beta.bin":  "beta contents",
	} {
		data, err := os.ReadFile(filepath.Join(destDir, name))
		if err != nil {
			t.Fatalf("read installed %s: %v", name, err)
		}
		if string(data) != want {
			t.Errorf("%s content = %q, want %q", name, data, want)
		}
	}
}

func TestRunSyncDryRun(t *testing.T) {
	manifestPath := writeManifest(t, `
ubi = {
    tools = {
        { project = "owner/repo", asset = "tool.bin" },
    },
}
`)

	// Dry run must not hit the network, so an unreachable project is fine.
	if err := runSync([]string{"--file", manifestPath, "--dry-run"}); err != nil {
		t.Fatalf("runSync(--dry-run) error = %v", err)
	}
}

func TestRunSyncReportsFailures(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	manifestPath := writeManifest(t, fmt.Sprintf(`
ubi = {
    tools = {
        { project = "owner/gone", forge = "forgejo", url = %q, asset = "tool.bin" },
    },
}
`, server.URL))

	err := runSync([]string{"--file", manifestPath, "--dest", t.TempDir()})
	if err == nil {
		t.Fatal("runSync() error = nil, want failure summary")
	}
}

func TestRunSyncMissingManifest(t *testing.T) {
	err := runSync([]string{"--file", filepath.Join(t.TempDir(), "missing.lua")})
	if err == nil {
		t.Fatal("runSync() error = nil, want failure for missing manifest")
	}
}

func TestRunSyncEmptyManifest(t *testing.T) {
	manifestPath := writeManifest(t, `ubi = { tools = {} }`)
	if err := runSync([]string{"--file", manifestPath}); err != nil {
		t.Fatalf("runSync() error = %v", err)
	}
}
