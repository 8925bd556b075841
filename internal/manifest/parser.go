package manifest

import (
	"context"
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/pepicrft/ubi/internal/platform"
)

// Parser parses Lua manifests with platform detection injected.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a parser using the given platform detector. A nil
// detector leaves the "platform" global undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile parses the manifest at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString parses a manifest from Lua source.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Manifest, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		injectPlatformTable(L, info)
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractManifest(L)
}

// ParseError is a manifest parsing error with a user-facing message
// and the raw Lua detail behind it.
type ParseError struct {
	Message string
	Detail  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// FormatError renders a parse error for display. Verbose mode keeps
// the full Lua traceback; otherwise it is trimmed away.
func FormatError(err error, verbose bool) string {
	parseErr, ok := err.(*ParseError)
	if !ok {
		return err.Error()
	}
	if verbose {
		return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
	}
	detail := parseErr.Detail
	if idx := strings.Index(detail, "stack traceback"); idx > 0 {
		detail = strings.TrimSpace(detail[:idx])
	}
	return fmt.Sprintf("%s: %s", parseErr.Message, detail)
}

// extractManifest pulls the global "ubi" table out of the Lua state.
func extractManifest(L *lua.LState) (*Manifest, error) {
	ubiTable := L.GetGlobal("ubi")
	if ubiTable.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'ubi' table",
			Detail:  fmt.Sprintf("expected table, got %s", ubiTable.Type()),
		}
	}

	m := &Manifest{}
	table := ubiTable.(*lua.LTable)

	if metaVal := table.RawGetString("meta"); metaVal.Type() == lua.LTTable {
		m.Meta = extractMeta(metaVal.(*lua.LTable))
	}

	if toolsVal := table.RawGetString("tools"); toolsVal.Type() == lua.LTTable {
		m.Tools = extractTools(toolsVal.(*lua.LTable))
	}

	if optsVal := table.RawGetString("options"); optsVal.Type() == lua.LTTable {
		m.Options = extractOptions(optsVal.(*lua.LTable))
	}

	if err := m.Validate(); err != nil {
		return nil, &ParseError{
			Message: "manifest validation failed",
			Detail:  err.Error(),
		}
	}

	return m, nil
}

func extractMeta(table *lua.LTable) Meta {
	return Meta{
		Name:        tableString(table, "name"),
		Description: tableString(table, "description"),
	}
}

// extractTools reads the tools array. Nil entries are skipped so that
// platform conditionals like platform.when(...) compose naturally.
func extractTools(table *lua.LTable) []Tool {
	var tools []Tool

	table.ForEach(func(key, value lua.LValue) {
		if value.Type() != lua.LTTable {
			return
		}
		t := value.(*lua.LTable)
		tools = append(tools, Tool{
			Project:       tableString(t, "project"),
			Tag:           tableString(t, "tag"),
			Forge:         tableString(t, "forge"),
			URL:           tableString(t, "url"),
			Asset:         tableString(t, "asset"),
			AssetRegex:    tableString(t, "asset_regex"),
			AssetTemplate: tableString(t, "asset_template"),
			Checksum:      tableString(t, "checksum"),
			Signature:     tableString(t, "signature"),
			Keyring:       tableString(t, "keyring"),
			MinisignKey:   tableString(t, "minisign_key"),
			Dest:          tableString(t, "dest"),
		})
	})

	return tools
}

func extractOptions(table *lua.LTable) Options {
	return Options{
		Dest:     tableString(table, "dest"),
		CacheDir: tableString(table, "cache_dir"),
	}
}

func tableString(table *lua.LTable, key string) string {
	if v := table.RawGetString(key); v.Type() == lua.LTString {
		return v.String()
	}
	return ""
}
