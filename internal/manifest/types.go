package manifest

import (
	"fmt"
	"net/url"
	"strings"
)

// MaxToolCount bounds how many tools one manifest may declare.
const MaxToolCount = 200

// Manifest is the parsed form of an ubi.lua file.
type Manifest struct {
	Meta    Meta    `json:"meta,omitempty"`
	Tools   []Tool  `json:"tools,omitempty"`
	Options Options `json:"options,omitempty"`
}

// Meta carries descriptive metadata about the manifest.
type Meta struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Tool declares one release asset to install.
type Tool struct {
	// Project as "owner/repo" or a full project URL.
	Project string `json:"project"`
	// Tag pins a release; empty means the latest release.
	Tag string `json:"tag,omitempty"`
	// Forge platform: github, gitlab, or forgejo. Empty means github,
	// or the kind derived from a project URL.
	Forge string `json:"forge,omitempty"`
	// URL overrides the platform's API base URL.
	URL string `json:"url,omitempty"`

	// Exactly one asset selector must be set.
	Asset         string `json:"asset,omitempty"`
	AssetRegex    string `json:"asset_regex,omitempty"`
	AssetTemplate string `json:"asset_template,omitempty"`

	// Optional verification inputs, by asset name and key file path.
	Checksum    string `json:"checksum,omitempty"`
	Signature   string `json:"signature,omitempty"`
	Keyring     string `json:"keyring,omitempty"`
	MinisignKey string `json:"minisign_key,omitempty"`

	// Dest overrides the manifest-wide destination directory.
	Dest string `json:"dest,omitempty"`
}

// Options carries manifest-wide settings.
type Options struct {
	// Dest is the default destination directory for installed assets.
	Dest string `json:"dest,omitempty"`
	// CacheDir caches downloads between runs.
	CacheDir string `json:"cache_dir,omitempty"`
}

// Validate checks structural rules the Lua extraction cannot express.
func (m *Manifest) Validate() error {
	if len(m.Tools) > MaxToolCount {
		return &ValidationError{
			Field:   "tools",
			Message: fmt.Sprintf("too many tools (%d), maximum is %d", len(m.Tools), MaxToolCount),
		}
	}

	for i, tool := range m.Tools {
		if err := tool.validate(); err != nil {
			return &ValidationError{
				Field:   fmt.Sprintf("tools[%d] (%s)", i, tool.Project),
				Message: err.Error(),
			}
		}
	}

	return nil
}

func (t *Tool) validate() error {
	if t.Project == "" {
		return fmt.Errorf("project is required")
	}
	if err := validateProject(t.Project); err != nil {
		return err
	}

	switch t.Forge {
	case "", "github", "gitlab", "forgejo":
	default:
		return fmt.Errorf("unknown forge %q (expected github, gitlab, or forgejo)", t.Forge)
	}

	selectors := 0
	for _, s := range []string{t.Asset, t.AssetRegex, t.AssetTemplate} {
		if s != "" {
			selectors++
		}
	}
	if selectors != 1 {
		return fmt.Errorf("exactly one of asset, asset_regex, asset_template is required")
	}

	if t.Signature != "" && t.Keyring == "" && t.MinisignKey == "" {
		return fmt.Errorf("signature requires keyring or minisign_key")
	}
	if t.URL != "" {
		u, err := url.Parse(t.URL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("url %q is not an absolute URL", t.URL)
		}
	}

	return nil
}

// validateProject accepts "owner/repo" identifiers and absolute
// project URLs with at least an owner/repo path.
func validateProject(project string) error {
	if strings.Contains(project, "://") {
		u, err := url.Parse(project)
		if err != nil {
			return fmt.Errorf("invalid project URL: %w", err)
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return fmt.Errorf("project URL %q has no owner/repo path", project)
		}
		return nil
	}

	parts := strings.Split(project, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("project %q is not of the form owner/repo", project)
	}
	return nil
}

// ValidationError reports which manifest field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "manifest validation failed for " + e.Field + ": " + e.Message
	}
	return "manifest validation failed: " + e.Message
}
