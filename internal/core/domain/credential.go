package domain

import "time"

// Credential is the resolved credential used to authenticate API calls.
// It is either a StaticCredential or an OAuth2Credential.
type Credential interface {
	// BearerToken returns the value sent in the Authorization header.
	BearerToken() string
	// Kind returns a short, printable name for the credential type.
	Kind() string
}

// StaticCredential is a personal access token with no expiry.
type StaticCredential struct {
	Token string
}

// BearerToken implements Credential.
func (c StaticCredential) BearerToken() string { return c.Token }

// Kind implements Credential.
func (c StaticCredential) Kind() string { return "static" }

// OAuth2Credential wraps an unexpired OAuth2 token record.
type OAuth2Credential struct {
	Token *OAuth2Token
}

// BearerToken implements Credential.
func (c OAuth2Credential) BearerToken() string { return c.Token.AccessToken }

// Kind implements Credential.
func (c OAuth2Credential) Kind() string { return "oauth2" }

// ResolveCredential picks the credential to use at now.
// An unexpired OAuth2 record always wins; otherwise the static token is used.
// Returns ErrNoToken when neither is usable.
func ResolveCredential(cfg *Config, now time.Time) (Credential, error) {
	if cfg == nil {
		return nil, ErrNoToken
	}
	if cfg.OAuth2 != nil && !cfg.OAuth2.IsExpired(now) {
		return OAuth2Credential{Token: cfg.OAuth2}, nil
	}
	if cfg.Token != "" {
		return StaticCredential{Token: cfg.Token}, nil
	}
	return nil, ErrNoToken
}
