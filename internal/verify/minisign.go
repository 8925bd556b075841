package verify

import (
	"fmt"
	"os"

	"github.com/jedisct1/go-minisign"
)

// Minisign verifies a minisign signature over the file at assetPath
// using the public key file at pubKeyPath.
func Minisign(assetPath, signaturePath, pubKeyPath string) error {
	pubKey, err := minisign.NewPublicKeyFromFile(pubKeyPath)
	if err != nil {
		return fmt.Errorf("read minisign pubkey: %w", err)
	}

	sig, err := minisign.NewSignatureFromFile(signaturePath)
	if err != nil {
		return fmt.Errorf("read minisign signature: %w", err)
	}

	content, err := os.ReadFile(assetPath)
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}

	valid, err := pubKey.Verify(content, sig)
	if err != nil {
		return fmt.Errorf("minisign: verification error: %w", err)
	}
	if !valid {
		return fmt.Errorf("minisign: signature verification failed")
	}

	return nil
}
