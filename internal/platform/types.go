// Package platform detects the host platform and renders user-supplied
// asset-name patterns against it.
//
// Detection combines runtime.GOOS/GOARCH with gopsutil host information
// for Linux distribution details; distro detection failing is not an
// error, since OS and architecture are always available. The package
// never guesses which release asset fits the host — it only substitutes
// detected values into patterns the user wrote.
package platform

import "context"

// Info contains detected platform information.
type Info struct {
	OS      string // "linux", "darwin", "windows"
	Arch    string // normalized: "amd64", "arm64", "arm", "386", "riscv64"
	ArchRaw string // original GOARCH value
	Distro  string // distro ID, Linux only (e.g. "ubuntu", "alpine")
	Version string // distro version, Linux only (e.g. "22.04")
}

// Detector detects platform information. The interface exists so the
// install flow can substitute a fixed platform in tests.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}
