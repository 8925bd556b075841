package forge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Asset is one downloadable file attached to a release, reduced to the
// forge-agnostic fields the installer needs. Assets are plain values
// created while decoding a release response; equality is structural.
type Asset struct {
	Name string
	URL  *url.URL
}

// Forge abstracts "which platform" so callers can resolve release
// assets uniformly. The three operations are invoked in order for one
// release lookup; FetchAssets runs the whole protocol itself.
type Forge interface {
	// ReleaseInfoURL deterministically builds the absolute URL of the
	// platform's release-info endpoint for the configured project,
	// scoped to the pinned tag when present and to the most recent
	// release otherwise. No I/O.
	ReleaseInfoURL() (*url.URL, error)

	// MaybeAddTokenHeader attaches the platform's authentication
	// header to req when the instance holds a token, and leaves req
	// untouched otherwise. No I/O.
	MaybeAddTokenHeader(req *http.Request) error

	// FetchAssets issues a single release-info request through client
	// and returns the release's assets in the order the platform
	// returned them. No caching, no retries.
	FetchAssets(ctx context.Context, client *http.Client) ([]Asset, error)
}

// Kind identifies a supported forge platform.
type Kind string

const (
	KindGitHub  Kind = "github"
	KindGitLab  Kind = "gitlab"
	KindForgejo Kind = "forgejo"
)

// Default API base URLs per platform.
const (
	githubAPIBase  = "https://api.github.com"
	gitlabAPIBase  = "https://gitlab.com/api/v4"
	forgejoAPIBase = "https://codeberg.org/api/v1"
)

// Options configures a forge backend. The zero value of every field is
// usable; only Project is required.
type Options struct {
	// Project is the "owner/repo" project identifier.
	Project string
	// Tag pins a specific release. Empty means the latest release.
	Tag string
	// BaseURL overrides the platform's default API base URL, for
	// self-hosted instances. Nil means the hosted platform.
	BaseURL *url.URL
	// Token authenticates API requests when non-empty.
	Token Token
	// JobToken marks Token as a GitLab CI job token, which GitLab
	// expects in a JOB-TOKEN header instead of Authorization. Ignored
	// by other platforms.
	JobToken bool
	// Logger receives debug diagnostics. Nil disables logging.
	Logger Logger
}

// New constructs the backend for the given platform kind.
func New(kind Kind, opts Options) (Forge, error) {
	switch kind {
	case KindGitHub:
		return NewGitHub(opts), nil
	case KindGitLab:
		return NewGitLab(opts), nil
	case KindForgejo:
		return NewForgejo(opts), nil
	default:
		return nil, fmt.Errorf("unsupported forge kind %q", kind)
	}
}

// KindFromHost guesses the platform kind from a hostname. The second
// return value is false for hosts that cannot be classified; callers
// must then ask the user for an explicit kind.
func KindFromHost(host string) (Kind, bool) {
	host = strings.ToLower(host)
	switch {
	case host == "github.com" || host == "api.github.com":
		return KindGitHub, true
	case strings.Contains(host, "gitlab"):
		return KindGitLab, true
	case host == "codeberg.org":
		return KindForgejo, true
	default:
		return "", false
	}
}

// splitProject splits an "owner/repo" project identifier into its two
// segments. Anything other than exactly two non-empty segments is
// rejected rather than truncated.
func splitProject(project string) (owner, repo string, err error) {
	parts := strings.Split(project, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q is not of the form owner/repo", ErrInvalidProjectName, project)
	}
	return parts[0], parts[1], nil
}

// appendPath returns a copy of base with the given path segments
// appended. Each segment is escaped individually, so a segment
// containing "/" stays a single path element; GitLab's URL-encoded
// project paths rely on this.
func appendPath(base *url.URL, segments ...string) *url.URL {
	u := *base
	escaped := make([]string, len(segments))
	needRaw := false
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
		if escaped[i] != s {
			needRaw = true
		}
	}
	trimmedRaw := strings.TrimRight(base.EscapedPath(), "/")
	u.Path = strings.TrimRight(base.Path, "/") + "/" + strings.Join(segments, "/")
	if needRaw || base.RawPath != "" {
		u.RawPath = trimmedRaw + "/" + strings.Join(escaped, "/")
	}
	return &u
}

func baseURLOrDefault(u *url.URL, def string) *url.URL {
	if u != nil {
		return u
	}
	parsed, err := url.Parse(def)
	if err != nil {
		panic("forge: invalid default base URL " + def)
	}
	return parsed
}

// setAuthHeader validates value as an HTTP header value and sets it on
// req. A rejected value surfaces as ErrInvalidToken; the value itself
// is never included in the error.
func setAuthHeader(req *http.Request, name, value string) error {
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: token contains characters not allowed in an HTTP header value", ErrInvalidToken)
	}
	req.Header.Set(name, value)
	return nil
}

// maxErrorBody bounds how much of an error response body is carried
// into the returned error.
const maxErrorBody = 64 << 10

// fetchReleaseInfo runs the shared protocol skeleton for one lookup:
// build the release-info URL, route the request through the backend's
// token hook, send it, and return the body of a 2xx response. Schema
// decoding stays with the backend.
func fetchReleaseInfo(ctx context.Context, client *http.Client, f Forge) ([]byte, error) {
	u, err := f.ReleaseInfoURL()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", ErrRequestFailed, u, err)
	}

	if err := f.MaybeAddTokenHeader(req); err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d from %s: %s",
			ErrRequestFailed, resp.StatusCode, u, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrRequestFailed, err)
	}
	return body, nil
}

// assetFromFields maps one platform asset record to an Asset. Entries
// missing a name or download URL, or carrying a non-absolute URL, are
// schema violations.
func assetFromFields(name, rawURL string) (Asset, error) {
	if name == "" || rawURL == "" {
		return Asset{}, fmt.Errorf("%w: asset entry missing name or download URL", ErrDecodeFailed)
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return Asset{}, fmt.Errorf("%w: asset %q download URL %q is not an absolute URL", ErrDecodeFailed, name, rawURL)
	}
	return Asset{Name: name, URL: u}, nil
}
