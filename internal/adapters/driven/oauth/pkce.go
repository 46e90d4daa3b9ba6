package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
)

// verifierBytes yields a 43 character verifier, the RFC 7636 minimum.
const verifierBytes = 32

// GeneratePKCECodes creates a verifier and its S256 challenge.
func GeneratePKCECodes() (*domain.PKCECodes, error) {
	verifier, err := GenerateCodeVerifier()
	if err != nil {
		return nil, err
	}
	return &domain.PKCECodes{
		CodeVerifier:  verifier,
		CodeChallenge: CodeChallenge(verifier),
	}, nil
}

// GenerateCodeVerifier returns 32 bytes from crypto/rand, base64url encoded
// without padding.
func GenerateCodeVerifier() (string, error) {
	return randomURLSafe(verifierBytes)
}

// CodeChallenge derives the S256 challenge for a verifier.
func CodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// GenerateState returns a random value for the OAuth state parameter.
func GenerateState() (string, error) {
	return randomURLSafe(16)
}

func randomURLSafe(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
