package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GitHub resolves release assets through the GitHub REST API. It also
// serves GitHub Enterprise instances via Options.BaseURL.
type GitHub struct {
	project string
	tag     string
	baseURL *url.URL
	token   Token
	log     Logger
}

// NewGitHub creates a GitHub backend.
func NewGitHub(opts Options) *GitHub {
	return &GitHub{
		project: opts.Project,
		tag:     opts.Tag,
		baseURL: baseURLOrDefault(opts.BaseURL, githubAPIBase),
		token:   opts.Token,
		log:     loggerOrNoop(opts.Logger),
	}
}

// githubRelease models the subset of the GitHub release response that
// the installer consumes.
type githubRelease struct {
	Assets []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// ReleaseInfoURL implements Forge.
//
// Latest: {base}/repos/{owner}/{repo}/releases/latest
// Tagged: {base}/repos/{owner}/{repo}/releases/tags/{tag}
func (g *GitHub) ReleaseInfoURL() (*url.URL, error) {
	owner, repo, err := splitProject(g.project)
	if err != nil {
		return nil, err
	}
	segments := []string{"repos", owner, repo, "releases"}
	if g.tag != "" {
		segments = append(segments, "tags", g.tag)
	} else {
		segments = append(segments, "latest")
	}
	return appendPath(g.baseURL, segments...), nil
}

// MaybeAddTokenHeader implements Forge. GitHub expects
// "Authorization: Bearer <token>".
func (g *GitHub) MaybeAddTokenHeader(req *http.Request) error {
	if g.token.Empty() {
		g.log.Debug("no GitHub token held, sending unauthenticated request")
		return nil
	}
	g.log.Debug("adding GitHub token to request")
	return setAuthHeader(req, "Authorization", "Bearer "+g.token.Value())
}

// FetchAssets implements Forge.
func (g *GitHub) FetchAssets(ctx context.Context, client *http.Client) ([]Asset, error) {
	body, err := fetchReleaseInfo(ctx, client, g)
	if err != nil {
		return nil, err
	}

	var rel githubRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	assets := make([]Asset, 0, len(rel.Assets))
	for _, a := range rel.Assets {
		asset, err := assetFromFields(a.Name, a.BrowserDownloadURL)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
