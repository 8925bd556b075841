package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.0.1"

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("ubi %s\n", Version)
			fmt.Println("Universal Binary Installer")
			return
		case "assets":
			// Handle ubi assets subcommand
			if err := runAssets(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "install":
			// Handle ubi install subcommand
			if err := runInstall(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "sync":
			// Handle ubi sync subcommand
			if err := runSync(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "platform":
			// Handle ubi platform subcommand
			if err := runPlatform(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("ubi - Universal Binary Installer")
	fmt.Println()
	fmt.Println("Resolve and install release assets from GitHub, GitLab, and Forgejo.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ubi --version               Show version information")
	fmt.Println("  ubi assets [options]        List release assets for a project")
	fmt.Println("  ubi install [options]       Download, verify, and install an asset")
	fmt.Println("  ubi sync [options]          Install every tool in an ubi.lua manifest")
	fmt.Println("  ubi platform [options]      Show the detected platform")
	fmt.Println()
	fmt.Println("Run 'ubi <command> --help' for command options.")
}
