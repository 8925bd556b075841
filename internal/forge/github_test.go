package forge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHubReleaseInfoURL(t *testing.T) {
	tests := []struct {
		name    string
		project string
		tag     string
		base    string
		want    string
		wantErr error
	}{
		{
			name:    "latest_default_base",
			project: "houseabsolute/ubi",
			want:    "https://api.github.com/repos/houseabsolute/ubi/releases/latest",
		},
		{
			name:    "pinned_tag",
			project: "houseabsolute/ubi",
			tag:     "v2.1.0",
			want:    "https://api.github.com/repos/houseabsolute/ubi/releases/tags/v2.1.0",
		},
		{
			name:    "enterprise_base",
			project: "owner/repo",
			base:    "https://github.example.com/api/v3",
			want:    "https://github.example.com/api/v3/repos/owner/repo/releases/latest",
		},
		{
			name:    "malformed_project",
			project: "just-a-name",
			wantErr: ErrInvalidProjectName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Project: tt.project, Tag: tt.tag}
			if tt.base != "" {
				opts.BaseURL = mustParseURL(t, tt.base)
			}
			u, err := NewGitHub(opts).ReleaseInfoURL()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if u.String() != tt.want {
				t.Errorf("got %q, want %q", u.String(), tt.want)
			}
		})
	}
}

func TestGitHubFetchAssets(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		token    string
		wantPath string
		wantAuth string
	}{
		{
			name:     "without_token",
			wantPath: "/repos/owner/repo/releases/latest",
		},
		{
			name:     "bearer_scheme",
			token:    "ghp_fakeToken",
			wantPath: "/repos/owner/repo/releases/latest",
			wantAuth: "Bearer ghp_fakeToken",
		},
		{
			name:     "tag_with_token",
			tag:      "v0.3.1",
			token:    "ghp_fakeToken",
			wantPath: "/repos/owner/repo/releases/tags/v0.3.1",
			wantAuth: "Bearer ghp_fakeToken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				auth := r.Header.Values("Authorization")
				switch {
				case tt.wantAuth == "" && len(auth) != 0:
					t.Errorf("unexpected Authorization header %v", auth)
					w.WriteHeader(http.StatusUnauthorized)
					return
				case tt.wantAuth != "" && (len(auth) != 1 || auth[0] != tt.wantAuth):
					t.Errorf("Authorization header %v, want exactly [%q]", auth, tt.wantAuth)
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				if r.URL.Path != tt.wantPath {
					t.Errorf("request path %q, want %q", r.URL.Path, tt.wantPath)
					http.NotFound(w, r)
					return
				}
				fmt.Fprint(w, `{"assets":[
					{"name":"tool-linux-amd64.tar.gz","browser_download_url":"https://example.com/dl/tool-linux-amd64.tar.gz"},
					{"name":"tool-darwin-arm64.tar.gz","browser_download_url":"https://example.com/dl/tool-darwin-arm64.tar.gz"}]}`)
			}))
			defer srv.Close()

			f := NewGitHub(Options{
				Project: "owner/repo",
				Tag:     tt.tag,
				BaseURL: mustParseURL(t, srv.URL),
				Token:   Token(tt.token),
			})

			assets, err := f.FetchAssets(context.Background(), srv.Client())
			if err != nil {
				t.Fatalf("FetchAssets: %v", err)
			}
			if len(assets) != 2 {
				t.Fatalf("got %d assets, want 2", len(assets))
			}
			if assets[0].Name != "tool-linux-amd64.tar.gz" || assets[1].Name != "tool-darwin-arm64.tar.gz" {
				t.Errorf("asset order not preserved: %q, %q", assets[0].Name, assets[1].Name)
			}
		})
	}
}

func TestGitHubFetchAssetsFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not_json", http.StatusOK, "oops", ErrDecodeFailed},
		{"missing_name", http.StatusOK, `{"assets":[{"browser_download_url":"https://example.com/a"}]}`, ErrDecodeFailed},
		{"http_403", http.StatusForbidden, `{"message":"rate limited"}`, ErrRequestFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			f := NewGitHub(Options{Project: "owner/repo", BaseURL: mustParseURL(t, srv.URL)})
			_, err := f.FetchAssets(context.Background(), srv.Client())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}
