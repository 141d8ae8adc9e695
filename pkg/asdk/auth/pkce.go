package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// GenerateVerifier returns a fresh PKCE code verifier: 32 bytes from a
// cryptographically secure source, base64url-encoded without padding.
func GenerateVerifier() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand is documented never to fail on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// GenerateChallenge derives the S256 code challenge for a verifier:
// the SHA-256 digest of its ASCII bytes, unpadded base64url.
func GenerateChallenge(verifier string) string {
	digest := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(digest[:])
}
