package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// secretLength is the entropy of an opaque secret in bytes.
const secretLength = 32

// GenerateSecret produces an opaque random secret and its storage
// digest. The secret is the only form handed to clients; only the
// digest ever reaches a store.
func GenerateSecret() (secret string, digest string, err error) {
	buf := make([]byte, secretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	secret = base64.RawURLEncoding.EncodeToString(buf)
	return secret, Digest(secret), nil
}

// Digest returns the deterministic one-way storage form of a secret, so
// a presented secret can be re-digested and matched against stored rows.
func Digest(secret string) string {
	h := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(h[:])
}

// DigestsEqual compares two digests in constant time.
func DigestsEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
