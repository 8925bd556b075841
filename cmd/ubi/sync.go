package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pepicrft/ubi/internal/download"
	"github.com/pepicrft/ubi/internal/manifest"
	"github.com/pepicrft/ubi/internal/platform"
)

// runSync handles the `ubi sync` subcommand
func runSync(args []string) error {
	showHelp := false
	dryRun := false
	verbose := false
	manifestPath := "ubi.lua"
	destDir := ""
	cacheDir := ""

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--dry-run", "-n":
			dryRun = true
		case "--verbose", "-v":
			verbose = true
		case "--file", "-f":
			manifestPath, err = flagValue(args, &i)
		case "--dest", "-d":
			destDir, err = flagValue(args, &i)
		case "--cache-dir":
			cacheDir, err = flagValue(args, &i)
		default:
			return fmt.Errorf("unknown option: %s\nRun 'ubi sync --help' for usage", args[i])
		}
		if err != nil {
			return err
		}
	}

	if showHelp {
		printSyncHelp()
		return nil
	}

	// Create context with timeout (30 minutes for many large assets)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	detector := platform.NewDetector()
	info, err := detector.Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	m, err := manifest.NewParser(detector).ParseFile(ctx, manifestPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, manifest.FormatError(err, verbose))
		return fmt.Errorf("parse %s", manifestPath)
	}

	if len(m.Tools) == 0 {
		fmt.Println("Manifest declares no tools.")
		return nil
	}

	if cacheDir == "" {
		cacheDir = m.Options.CacheDir
	}

	if dryRun {
		fmt.Printf("Would install %d tool(s) from %s:\n", len(m.Tools), manifestPath)
		for _, tool := range m.Tools {
			fmt.Printf("  %s\t%s\n", tool.Project, syncDest(tool, m, destDir))
		}
		return nil
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	dl := download.NewDownloader(client, cacheDir)

	failed := 0
	for _, tool := range m.Tools {
		if err := syncTool(ctx, client, dl, tool, syncDest(tool, m, destDir), info, verbose); err != nil {
			fmt.Fprintf(os.Stderr, "Error installing %s: %v\n", tool.Project, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d tools failed to install", failed, len(m.Tools))
	}
	fmt.Printf("Installed %d tool(s).\n", len(m.Tools))
	return nil
}

// syncDest resolves the destination directory for one tool. Precedence:
// the tool's own dest, then the manifest-wide option, then the --dest
// flag, then the current directory.
func syncDest(tool manifest.Tool, m *manifest.Manifest, flagDest string) string {
	switch {
	case tool.Dest != "":
		return tool.Dest
	case m.Options.Dest != "":
		return m.Options.Dest
	case flagDest != "":
		return flagDest
	default:
		return "."
	}
}

// syncTool resolves, downloads, verifies, and installs one manifest
// entry.
func syncTool(ctx context.Context, client *http.Client, dl *download.Downloader, tool manifest.Tool, destDir string, info *platform.Info, verbose bool) error {
	ff := forgeFlags{
		project:  tool.Project,
		tag:      tool.Tag,
		kindName: tool.Forge,
		baseURL:  tool.URL,
		verbose:  verbose,
	}
	f, err := ff.build()
	if err != nil {
		return err
	}

	assets, err := f.FetchAssets(ctx, client)
	if err != nil {
		return err
	}

	asset, err := pickAsset(assets, tool.Asset, tool.AssetRegex, tool.AssetTemplate, info)
	if err != nil {
		return err
	}

	fmt.Printf("Downloading %s (%s)...\n", asset.Name, tool.Project)
	assetPath, err := dl.FetchAsset(ctx, asset)
	if err != nil {
		return err
	}

	if tool.Checksum != "" {
		if err := verifyChecksum(ctx, dl, assets, tool.Checksum, assetPath); err != nil {
			return err
		}
	}
	if tool.Signature != "" {
		if err := verifySignature(ctx, dl, assets, tool.Signature, assetPath, tool.Keyring, tool.MinisignKey); err != nil {
			return err
		}
	}

	return installFile(assetPath, filepath.Join(destDir, asset.Name))
}

// printSyncHelp prints help for the sync command
func printSyncHelp() {
	fmt.Println("Usage: ubi sync [options]")
	fmt.Println()
	fmt.Println("Install every tool declared in an ubi.lua manifest.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help         Show this help message")
	fmt.Println("  -n, --dry-run      List what would be installed without downloading")
	fmt.Println("  -f, --file <path>  Manifest file (default: ubi.lua)")
	fmt.Println("  -d, --dest <dir>   Fallback destination directory")
	fmt.Println("  --cache-dir <dir>  Cache downloads under this directory")
	fmt.Println("  -v, --verbose      Print debug diagnostics to stderr")
	fmt.Println()
	fmt.Println("Manifest example:")
	fmt.Println("  ubi = {")
	fmt.Println("      tools = {")
	fmt.Println("          {")
	fmt.Println("              project = \"houseabsolute/precious\",")
	fmt.Println("              asset_template = \"precious-{{os}}-{{arch}}.tar.gz\",")
	fmt.Println("          },")
	fmt.Println("      },")
	fmt.Println("      options = { dest = \"bin\" },")
	fmt.Println("  }")
}
