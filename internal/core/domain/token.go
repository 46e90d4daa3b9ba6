package domain

import "time"

// DefaultTokenLifetime is used when a token response omits expires_in.
const DefaultTokenLifetime = 7200 * time.Second

// OAuth2Token represents the stored OAuth2 credentials for a GitLab host.
// The record is always replaced wholesale, never patched field by field.
type OAuth2Token struct {
	// ClientID is the OAuth application the tokens were issued to.
	ClientID string `json:"client_id"`
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token"`
	// ExpiresAt is when the access token expires.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewOAuth2Token builds a token record whose expiry is derived from the
// provider's expires_in value relative to issuedAt.
// A non-positive expiresIn falls back to DefaultTokenLifetime.
func NewOAuth2Token(clientID, accessToken, refreshToken string, expiresIn time.Duration, issuedAt time.Time) *OAuth2Token {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenLifetime
	}
	return &OAuth2Token{
		ClientID:     clientID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    issuedAt.Add(expiresIn).UTC(),
	}
}

// IsExpired reports whether the access token is no longer valid at now.
func (t *OAuth2Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
