package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize      = 32
	hashKeyLength = 32
)

// CredentialHasher derives and verifies PBKDF2-HMAC-SHA256 secret hashes.
// It is shared by password and API-key secret verification; the iteration
// count is a contract (100k in production), not a tuning knob callers pick
// per call.
type CredentialHasher struct {
	iterations int
}

// NewCredentialHasher builds a hasher with the given iteration count.
// Production wiring MUST pass 100_000; tests may lower it for speed.
func NewCredentialHasher(iterations int) *CredentialHasher {
	if iterations <= 0 {
		iterations = 100_000
	}
	return &CredentialHasher{iterations: iterations}
}

// Hash derives a deterministic PBKDF2-HMAC-SHA256 digest for secret under
// salt. Equal (secret, salt) pairs always produce equal output.
func (h *CredentialHasher) Hash(secret string, salt []byte) []byte {
	return pbkdf2.Key([]byte(secret), salt, h.iterations, hashKeyLength, sha256.New)
}

// Verify reports whether secret hashes to expected under salt, using a
// constant-time comparison to resist timing attacks.
func (h *CredentialHasher) Verify(secret string, salt, expected []byte) bool {
	got := h.Hash(secret, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}

// NewSalt returns 32 cryptographically random bytes.
func NewSalt() ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// NewAPIKeySecret returns a fresh 32-byte, URL-safe base64-encoded secret.
func NewAPIKeySecret() (string, error) {
	buf := make([]byte, saltSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key secret: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}
