package forge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GitLab resolves release assets through the GitLab REST API. GitLab
// addresses projects by a single URL-encoded "owner%2Frepo" path
// element and publishes release downloads as asset links rather than
// the browser_download_url field GitHub and Forgejo use.
type GitLab struct {
	project  string
	tag      string
	baseURL  *url.URL
	token    Token
	jobToken bool
	log      Logger
}

// NewGitLab creates a GitLab backend.
func NewGitLab(opts Options) *GitLab {
	return &GitLab{
		project:  opts.Project,
		tag:      opts.Tag,
		baseURL:  baseURLOrDefault(opts.BaseURL, gitlabAPIBase),
		token:    opts.Token,
		jobToken: opts.JobToken,
		log:      loggerOrNoop(opts.Logger),
	}
}

// gitlabRelease models the subset of the GitLab release response that
// the installer consumes. Download URLs live under assets.links.
type gitlabRelease struct {
	Assets struct {
		Links []struct {
			Name           string `json:"name"`
			DirectAssetURL string `json:"direct_asset_url"`
		} `json:"links"`
	} `json:"assets"`
}

// ReleaseInfoURL implements Forge.
//
// Latest: {base}/projects/{owner%2Frepo}/releases/permalink/latest
// Tagged: {base}/projects/{owner%2Frepo}/releases/{tag}
func (g *GitLab) ReleaseInfoURL() (*url.URL, error) {
	owner, repo, err := splitProject(g.project)
	if err != nil {
		return nil, err
	}
	// The project path is one escaped path element, not two.
	segments := []string{"projects", owner + "/" + repo, "releases"}
	if g.tag != "" {
		segments = append(segments, g.tag)
	} else {
		segments = append(segments, "permalink", "latest")
	}
	return appendPath(g.baseURL, segments...), nil
}

// MaybeAddTokenHeader implements Forge. Personal and project tokens go
// in "Authorization: Bearer <token>"; CI job tokens use GitLab's
// dedicated "JOB-TOKEN: <token>" header instead.
func (g *GitLab) MaybeAddTokenHeader(req *http.Request) error {
	if g.token.Empty() {
		g.log.Debug("no GitLab token held, sending unauthenticated request")
		return nil
	}
	if g.jobToken {
		g.log.Debug("adding GitLab CI job token to request")
		return setAuthHeader(req, "JOB-TOKEN", g.token.Value())
	}
	g.log.Debug("adding GitLab token to request")
	return setAuthHeader(req, "Authorization", "Bearer "+g.token.Value())
}

// FetchAssets implements Forge.
func (g *GitLab) FetchAssets(ctx context.Context, client *http.Client) ([]Asset, error) {
	body, err := fetchReleaseInfo(ctx, client, g)
	if err != nil {
		return nil, err
	}

	var rel gitlabRelease
	if err := json.Unmarshal(body, &rel); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	assets := make([]Asset, 0, len(rel.Assets.Links))
	for _, link := range rel.Assets.Links {
		asset, err := assetFromFields(link.Name, link.DirectAssetURL)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
