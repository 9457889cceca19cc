package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32 // 256 bits

// newToken generates a cryptographically random session token. Collisions
// over any realistic session count are negligible, and the token cannot be
// guessed faster than brute force within a session's lifetime.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
