package platform

import (
	"fmt"
	"strings"
)

// normalizeArch converts GOARCH (or common uname spellings) to the
// normalized architecture names used throughout the tool.
func normalizeArch(arch string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(arch)) {
	case "amd64", "x86_64", "x64":
		return "amd64", nil
	case "arm64", "aarch64":
		return "arm64", nil
	case "arm", "armv6l", "armv7l":
		return "arm", nil
	case "386", "i386", "i686", "x86":
		return "386", nil
	case "riscv64":
		return "riscv64", nil
	default:
		return "", fmt.Errorf("unsupported architecture: %s", arch)
	}
}

// normalizeToken lowercases and trims a detected identifier for
// consistent comparisons.
func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
