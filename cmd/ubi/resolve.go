package main

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/pepicrft/ubi/internal/forge"
	"github.com/pepicrft/ubi/internal/platform"
)

// forgeFlags holds the forge-selection options shared by the assets
// and install subcommands.
type forgeFlags struct {
	project  string
	tag      string
	kindName string
	baseURL  string
	token    string
	jobToken bool
	verbose  bool
}

// parseFlag consumes a forge-selection flag at args[*i], advancing *i
// past any flag value. Returns false for flags it does not own.
func (ff *forgeFlags) parseFlag(args []string, i *int) (bool, error) {
	var err error
	switch args[*i] {
	case "--project", "-p":
		ff.project, err = flagValue(args, i)
	case "--tag":
		ff.tag, err = flagValue(args, i)
	case "--forge":
		ff.kindName, err = flagValue(args, i)
	case "--url":
		ff.baseURL, err = flagValue(args, i)
	case "--token":
		ff.token, err = flagValue(args, i)
	case "--gitlab-job-token":
		ff.jobToken = true
	case "--verbose", "-v":
		ff.verbose = true
	default:
		return false, nil
	}
	return true, err
}

// flagValue returns the value following the flag at args[*i].
func flagValue(args []string, i *int) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s requires a value", args[*i])
	}
	*i++
	return args[*i], nil
}

// build resolves the flags into a forge backend. The project may be
// given as "owner/repo" or as a full project URL, in which case the
// platform kind and its owner/repo path are derived from the URL.
func (ff *forgeFlags) build() (forge.Forge, error) {
	if ff.project == "" {
		return nil, fmt.Errorf("no project specified; use --project owner/repo")
	}

	project := ff.project
	kind := forge.Kind(ff.kindName)

	if strings.Contains(project, "://") {
		u, err := url.Parse(project)
		if err != nil {
			return nil, fmt.Errorf("parse project URL: %w", err)
		}
		if kind == "" {
			k, ok := forge.KindFromHost(u.Host)
			if !ok {
				return nil, fmt.Errorf("cannot determine forge platform from host %q; use --forge github|gitlab|forgejo", u.Host)
			}
			kind = k
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 {
			return nil, fmt.Errorf("project URL %q has no owner/repo path", project)
		}
		project = parts[0] + "/" + parts[1]
	}

	if kind == "" {
		kind = forge.KindGitHub
	}

	var baseURL *url.URL
	if ff.baseURL != "" {
		u, err := url.Parse(ff.baseURL)
		if err != nil || !u.IsAbs() {
			return nil, fmt.Errorf("--url %q is not an absolute URL", ff.baseURL)
		}
		baseURL = u
	}

	var logger forge.Logger
	if ff.verbose {
		logger = stderrLogger{}
	}

	return forge.New(kind, forge.Options{
		Project:  project,
		Tag:      ff.tag,
		BaseURL:  baseURL,
		Token:    forge.Token(ff.token),
		JobToken: ff.jobToken,
		Logger:   logger,
	})
}

// stderrLogger writes forge debug lines to stderr for --verbose runs.
type stderrLogger struct{}

func (stderrLogger) Debug(msg string, keysAndValues ...interface{}) {
	fmt.Fprintf(os.Stderr, "debug: %s", msg)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fmt.Fprintf(os.Stderr, " %v=%v", keysAndValues[i], keysAndValues[i+1])
	}
	fmt.Fprintln(os.Stderr)
}

// pickAsset selects one asset from a release. Exactly one selector must
// be given: an exact name, a regular expression, or a platform pattern
// rendered against info. Matching never guesses; zero or multiple
// matches are errors.
func pickAsset(assets []forge.Asset, name, pattern, tmpl string, info *platform.Info) (forge.Asset, error) {
	selectors := 0
	for _, s := range []string{name, pattern, tmpl} {
		if s != "" {
			selectors++
		}
	}
	if selectors == 0 {
		return forge.Asset{}, fmt.Errorf("no asset selector; use --asset, --asset-regex, or --asset-template")
	}
	if selectors > 1 {
		return forge.Asset{}, fmt.Errorf("use only one of --asset, --asset-regex, --asset-template")
	}

	if tmpl != "" {
		name = platform.Render(tmpl, info)
	}

	if name != "" {
		return findAssetByName(assets, name)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return forge.Asset{}, fmt.Errorf("invalid --asset-regex: %w", err)
	}
	var matches []forge.Asset
	for _, a := range assets {
		if re.MatchString(a.Name) {
			matches = append(matches, a)
		}
	}
	switch len(matches) {
	case 0:
		return forge.Asset{}, fmt.Errorf("no asset matches %q; run 'ubi assets' to list them", pattern)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, a := range matches {
			names[i] = a.Name
		}
		return forge.Asset{}, fmt.Errorf("%q matches %d assets: %s", pattern, len(matches), strings.Join(names, ", "))
	}
}

// findAssetByName looks up an asset by its exact name.
func findAssetByName(assets []forge.Asset, name string) (forge.Asset, error) {
	for _, a := range assets {
		if a.Name == name {
			return a, nil
		}
	}
	return forge.Asset{}, fmt.Errorf("release has no asset named %q; run 'ubi assets' to list them", name)
}
