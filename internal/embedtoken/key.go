package embedtoken

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keyInfo = "feedbackhub embed token v1"

// DeriveKey stretches the configured secret into a signing key. An empty
// secret yields a nil key.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, nil
	}

	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("failed to derive embed token key: %w", err)
	}
	return key, nil
}
