package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

// runAssets handles the `ubi assets` subcommand
func runAssets(args []string) error {
	showHelp := false
	asJSON := false
	var ff forgeFlags

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
		case "--json":
			asJSON = true
		default:
			return fmt.Errorf("unknown option: %s\nRun 'ubi assets --help' for usage", args[i])
		}
	}

	if showHelp {
		printAssetsHelp()
		return nil
	}

	f, err := ff.build()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: 30 * time.Second}
	assets, err := f.FetchAssets(ctx, client)
	if err != nil {
		return err
	}

	if asJSON {
		type jsonAsset struct {
			Name string `json:"name"`
			URL  string `json:"url"`
		}
		out := make([]jsonAsset, len(assets))
		for i, a := range assets {
			out[i] = jsonAsset{Name: a.Name, URL: a.URL.String()}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(assets) == 0 {
		fmt.Println("Release has no assets.")
		return nil
	}
	for _, a := range assets {
		fmt.Printf("%s\t%s\n", a.Name, a.URL)
	}
	return nil
}

// printAssetsHelp prints help for the assets command
func printAssetsHelp() {
	fmt.Println("Usage: ubi assets [options]")
	fmt.Println()
	fmt.Println("List the downloadable assets of a project's release.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help            Show this help message")
	fmt.Println("  -p, --project <p>     Project as owner/repo or a full project URL (required)")
	fmt.Println("  --tag <tag>           Release tag (default: latest release)")
	fmt.Println("  --forge <kind>        Platform: github, gitlab, or forgejo")
	fmt.Println("  --url <base>          API base URL for self-hosted instances")
	fmt.Println("  --token <token>       API token for private projects")
	fmt.Println("  --gitlab-job-token    Send the token as a GitLab CI JOB-TOKEN header")
	fmt.Println("  --json                Print assets as JSON")
	fmt.Println("  -v, --verbose         Print debug diagnostics to stderr")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ubi assets -p houseabsolute/ubi")
	fmt.Println("  ubi assets -p houseabsolute/ubi --tag v0.7.2")
	fmt.Println("  ubi assets -p https://gitlab.com/gitlab-org/cli")
	fmt.Println("  ubi assets -p owner/repo --forge forgejo --url https://git.example.com/api/v1")
}
