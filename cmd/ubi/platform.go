package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pepicrft/ubi/internal/platform"
)

// runPlatform handles the `ubi platform` subcommand
func runPlatform(args []string) error {
	showHelp := false
	pattern := ""

	for i := 0; i < len(args); i++ {
		var err error
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--pattern":
			pattern, err = flagValue(args, &i)
		default:
			return fmt.Errorf("unknown option: %s\nRun 'ubi platform --help' for usage", args[i])
		}
		if err != nil {
			return err
		}
	}

	if showHelp {
		printPlatformHelp()
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := platform.NewDetector().Detect(ctx)
	if err != nil {
		return fmt.Errorf("detect platform: %w", err)
	}

	if pattern != "" {
		fmt.Println(platform.Render(pattern, info))
		return nil
	}

	fmt.Printf("OS:       %s\n", info.OS)
	fmt.Printf("Arch:     %s\n", info.Arch)
	fmt.Printf("Raw arch: %s\n", info.ArchRaw)
	if info.Distro != "" {
		fmt.Printf("Distro:   %s %s\n", info.Distro, info.Version)
	}
	return nil
}

// printPlatformHelp prints help for the platform command
func printPlatformHelp() {
	fmt.Println("Usage: ubi platform [options]")
	fmt.Println()
	fmt.Println("Show the detected operating system and architecture.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help       Show this help message")
	fmt.Println("  --pattern <t>    Render a pattern with {{os}}/{{arch}} variables")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ubi platform")
	fmt.Println("  ubi platform --pattern 'tool-{{os}}-{{arch}}.tar.gz'")
}
