// Package driving defines the ports used by inbound adapters (the CLI).
package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
)

// LoginOptions controls a single `auth login` attempt.
type LoginOptions struct {
	// Host overrides the configured host for this login and is saved on success.
	Host string
	// ClientID overrides the default OAuth application ID.
	ClientID string
	// NoBrowser skips opening the browser; the URL is only reported.
	NoBrowser bool
	// OnAuthURL is called with the authorization URL before waiting.
	OnAuthURL func(authURL string)
	// OnWaiting is called once the listener is ready for the redirect.
	OnWaiting func()
}

// AuthState describes where a configuration sits in the login lifecycle.
type AuthState string

const (
	// AuthStateUnauthenticated means no usable credential is configured.
	AuthStateUnauthenticated AuthState = "unauthenticated"
	// AuthStateOAuth2 means an OAuth2 record is configured.
	AuthStateOAuth2 AuthState = "oauth2"
	// AuthStateStatic means only a legacy static token is configured.
	AuthStateStatic AuthState = "static"
)

// AuthStatus is a snapshot of the configured credentials.
type AuthStatus struct {
	State     AuthState
	Host      string
	ClientID  string
	ExpiresAt time.Time
	Expired   bool
}

// AuthService manages OAuth2 login, refresh and bearer-token resolution.
type AuthService interface {
	// Login runs the authorization-code-with-PKCE flow and persists the tokens.
	Login(ctx context.Context, cfg *domain.Config, opts LoginOptions) error

	// Refresh exchanges the stored refresh token for a new token pair and
	// persists it. Fails with domain.ErrNoOAuth2Config without an OAuth2 record.
	Refresh(ctx context.Context, cfg *domain.Config) error

	// EnsureFresh refreshes the OAuth2 record if, and only if, it has expired.
	EnsureFresh(ctx context.Context, cfg *domain.Config) error

	// CurrentBearerToken resolves the token to send with API requests.
	CurrentBearerToken(cfg *domain.Config) (string, error)

	// Status reports the credential state without touching the network.
	Status(cfg *domain.Config) AuthStatus
}
