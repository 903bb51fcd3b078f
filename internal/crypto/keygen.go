package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecret produces a cryptographically random hex secret of the
// given byte length. Used to mint a throwaway signing secret in
// development when JWT_SECRET is not set.
func GenerateSecret(numBytes int) (string, error) {
	b := make([]byte, numBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
