package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewOpaqueToken returns 256 bits of randomness, base64url-encoded. Used for
// email verification tokens, which are unguessable by construction rather
// than signed.
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
