package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pepicrft/ubi/internal/download"
	"github.com/pepicrft/ubi/internal/forge"
	"github.com/pepicrft/ubi/internal/platform"
	"github.com/pepicrft/ubi/internal/verify"
)

// runInstall handles the `ubi install` subcommand
func runInstall(args []string) error {
	showHelp := false
	var ff forgeFlags
	var (
		assetName     string
		assetRegex    string
		assetTemplate string
		checksumName  string
		sigName       string
		keyringPath   string
		minisignKey   string
		cacheDir      string
		destDir       = "."
	)

	for i := 0; i < len(args); i++ {
		handled, err := ff.parseFlag(args, &i)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--asset":
			assetName, err = flagValue(args, &i)
		case "--asset-regex":
			assetRegex, err = flagValue(args, &i)
		case "--asset-template":
			assetTemplate, err = flagValue(args, &i)
		case "--checksum":
			checksumName, err = flagValue(args, &i)
		case "--signature":
			sigName, err = flagValue(args, &i)
		case "--keyring":
			keyringPath, err = flagValue(args, &i)
		case "--minisign-key":
			minisignKey, err = flagValue(args, &i)
		case "--cache-dir":
			cacheDir, err = flagValue(args, &i)
		case "--dest", "-d":
			destDir, err = flagValue(args, &i)
		default:
			return fmt.Errorf("unknown option: %s\nRun 'ubi install --help' for usage", args[i])
		}
		if err != nil {
			return err
		}
	}

	if showHelp {
		printInstallHelp()
		return nil
	}

	if sigName != "" && keyringPath == "" && minisignKey == "" {
		return fmt.Errorf("--signature requires --keyring or --minisign-key")
	}

	f, err := ff.build()
	if err != nil {
		return err
	}

	// Create context with timeout (10 minutes for potentially large assets)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: 10 * time.Minute}
	assets, err := f.FetchAssets(ctx, client)
	if err != nil {
		return err
	}

	var info *platform.Info
	if assetTemplate != "" {
		info, err = platform.NewDetector().Detect(ctx)
		if err != nil {
			return fmt.Errorf("detect platform: %w", err)
		}
	}

	asset, err := pickAsset(assets, assetName, assetRegex, assetTemplate, info)
	if err != nil {
		return err
	}

	dl := download.NewDownloader(client, cacheDir)

	fmt.Printf("Downloading %s...\n", asset.Name)
	assetPath, err := dl.FetchAsset(ctx, asset)
	if err != nil {
		return err
	}

	if checksumName != "" {
		if err := verifyChecksum(ctx, dl, assets, checksumName, assetPath); err != nil {
			return err
		}
		fmt.Println("Checksum OK")
	}

	if sigName != "" {
		if err := verifySignature(ctx, dl, assets, sigName, assetPath, keyringPath, minisignKey); err != nil {
			return err
		}
		fmt.Println("Signature OK")
	}

	destPath := filepath.Join(destDir, asset.Name)
	if err := installFile(assetPath, destPath); err != nil {
		return err
	}

	fmt.Printf("Installed %s\n", destPath)
	return nil
}

// verifyChecksum downloads the named checksum asset and checks the
// downloaded payload against it.
func verifyChecksum(ctx context.Context, dl *download.Downloader, assets []forge.Asset, name, assetPath string) error {
	checksumAsset, err := findAssetByName(assets, name)
	if err != nil {
		return err
	}
	checksumPath, err := dl.FetchAsset(ctx, checksumAsset)
	if err != nil {
		return err
	}
	return verify.Checksum(assetPath, checksumPath)
}

// verifySignature downloads the named signature asset and verifies the
// payload with GPG or minisign, depending on which key was provided.
func verifySignature(ctx context.Context, dl *download.Downloader, assets []forge.Asset, name, assetPath, keyringPath, minisignKey string) error {
	sigAsset, err := findAssetByName(assets, name)
	if err != nil {
		return err
	}
	sigPath, err := dl.FetchAsset(ctx, sigAsset)
	if err != nil {
		return err
	}
	if minisignKey != "" {
		return verify.Minisign(assetPath, sigPath, minisignKey)
	}
	return verify.GPG(assetPath, sigPath, keyringPath)
}

// installFile copies a verified payload into place with the executable
// bit set. Extraction of archives is left to the user.
func installFile(srcPath, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open downloaded asset: %w", err)
	}
	defer src.Close()

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return fmt.Errorf("create dest file: %w", err)
	}

	if _, err := io.Copy(dest, src); err != nil {
		dest.Close()
		return fmt.Errorf("copy asset: %w", err)
	}
	if err := dest.Close(); err != nil {
		return fmt.Errorf("close dest file: %w", err)
	}
	return nil
}

// printInstallHelp prints help for the install command
func printInstallHelp() {
	fmt.Println("Usage: ubi install [options]")
	fmt.Println()
	fmt.Println("Download one release asset, optionally verify it, and place it")
	fmt.Println("in the destination directory.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help              Show this help message")
	fmt.Println("  -p, --project <p>       Project as owner/repo or a full project URL (required)")
	fmt.Println("  --tag <tag>             Release tag (default: latest release)")
	fmt.Println("  --forge <kind>          Platform: github, gitlab, or forgejo")
	fmt.Println("  --url <base>            API base URL for self-hosted instances")
	fmt.Println("  --token <token>         API token for private projects")
	fmt.Println("  --gitlab-job-token      Send the token as a GitLab CI JOB-TOKEN header")
	fmt.Println("  --asset <name>          Select the asset with this exact name")
	fmt.Println("  --asset-regex <re>      Select the single asset matching this regexp")
	fmt.Println("  --asset-template <t>    Select by pattern with {{os}}/{{arch}} variables")
	fmt.Println("  --checksum <name>       Verify against this checksum asset")
	fmt.Println("  --signature <name>      Verify against this detached signature asset")
	fmt.Println("  --keyring <path>        GPG keyring file for --signature")
	fmt.Println("  --minisign-key <path>   Minisign public key file for --signature")
	fmt.Println("  --cache-dir <dir>       Cache downloads under this directory")
	fmt.Println("  -d, --dest <dir>        Destination directory (default: current directory)")
	fmt.Println("  -v, --verbose           Print debug diagnostics to stderr")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ubi install -p owner/repo --asset tool-linux-amd64.tar.gz")
	fmt.Println("  ubi install -p owner/repo --asset-template 'tool-{{os}}-{{arch}}.tar.gz'")
	fmt.Println("  ubi install -p owner/repo --asset tool.tar.gz \\")
	fmt.Println("      --checksum SHA256SUMS --signature tool.tar.gz.asc --keyring release.gpg")
}
