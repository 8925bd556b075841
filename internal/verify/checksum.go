package verify

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Checksum verifies that the file at assetPath matches the SHA256
// digest recorded in checksumPath. The checksum file may hold either a
// single bare digest or a SHA256SUMS listing; in the latter case the
// entry whose filename matches assetPath's base name is used.
func Checksum(assetPath, checksumPath string) error {
	actual, err := fileSHA256(assetPath)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	expected, err := findChecksum(checksumPath, filepath.Base(assetPath))
	if err != nil {
		return err
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for %s:\nactual:   %s\nexpected: %s",
			filepath.Base(assetPath), actual, expected)
	}

	return nil
}

// fileSHA256 computes the hex SHA256 digest of a file.
func fileSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// findChecksum extracts the expected digest for filename from a
// checksum file. A file containing only a digest applies to any
// filename. SHA256SUMS lines may name files with leading paths or the
// "*filename" binary-mode marker.
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		if len(parts) == 1 {
			if isHexDigest(parts[0]) {
				return parts[0], nil
			}
			continue
		}

		entry := strings.TrimPrefix(parts[1], "*")
		if entry == filename || filepath.Base(entry) == filename {
			return parts[0], nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}

	return "", fmt.Errorf("checksum not found for %s", filename)
}

func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
