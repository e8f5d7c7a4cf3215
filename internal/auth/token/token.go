// Package token mints opaque bearer tokens and the hashes stored in their place.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// DecisionTokenBytes is the entropy of a quote decision token.
const DecisionTokenBytes = 32

func GenerateRandomToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func HashSHA256(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// IsWellFormed reports whether raw decodes as an unpadded base64url token of size bytes.
func IsWellFormed(raw string, size int) bool {
	if len(raw) != base64.RawURLEncoding.EncodedLen(size) {
		return false
	}
	b, err := base64.RawURLEncoding.DecodeString(raw)
	return err == nil && len(b) == size
}
