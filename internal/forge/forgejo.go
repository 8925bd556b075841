package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Forgejo resolves release assets through the Forgejo (or Gitea) API.
// The default base URL points at Codeberg, the largest public Forgejo
// instance; self-hosted instances are served via Options.BaseURL.
type Forgejo struct {
	project string
	tag     string
	baseURL *url.URL
	token   Token
	log     Logger
}

// NewForgejo creates a Forgejo backend.
func NewForgejo(opts Options) *Forgejo {
	return &Forgejo{
		project: opts.Project,
		tag:     opts.Tag,
		baseURL: baseURLOrDefault(opts.BaseURL, forgejoAPIBase),
		token:   opts.Token,
		log:     loggerOrNoop(opts.Logger),
	}
}

// forgejoRelease models the subset of the Forgejo release response that
// the installer consumes.
type forgejoRelease struct {
	Assets []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// ReleaseInfoURL implements Forge.
//
// Latest: {base}/repos/{owner}/{repo}/releases/latest
// Tagged: {base}/repos/{owner}/{repo}/releases/tags/{tag}
func (f *Forgejo) ReleaseInfoURL() (*url.URL, error) {
	owner, repo, err := splitProject(f.project)
	if err != nil {
		return nil, err
	}
	segments := []string{"repos", owner, repo, "releases"}
	if f.tag != "" {
		segments = append(segments, "tags", f.tag)
	} else {
		segments = append(segments, "latest")
	}
	return appendPath(f.baseURL, segments...), nil
}

// MaybeAddTokenHeader implements Forge. Forgejo expects the "token"
// scheme, not "Bearer": "Authorization: token <token>".
func (f *Forgejo) MaybeAddTokenHeader(req *http.Request) error {
	if f.token.Empty() {
		f.log.Debug("no Forgejo token held, sending unauthenticated request")
		return nil
	}
	f.log.Debug("adding Forgejo token to request")
	return setAuthHeader(req, "Authorization", "token "+f.token.Value())
}

// FetchAssets implements Forge.
func (f *Forgejo) FetchAssets(ctx context.Context, client *http.Client) ([]Asset, error) {
	body, err := fetchReleaseInfo(ctx, client, f)
	if err != nil {
		return nil, err
	}

	var rel forgejoRelease
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
