// Package driven defines the ports implemented by outbound adapters.
package driven

import (
	"context"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
)

// OAuthHandler provides the OAuth2 operations needed for login and refresh.
// Every method that talks to the provider takes the host explicitly so a
// single handler serves gitlab.com and self-managed instances alike.
type OAuthHandler interface {
	// GeneratePKCE creates a fresh code verifier and its S256 challenge.
	GeneratePKCE() (*domain.PKCECodes, error)

	// GenerateState creates a random state value for CSRF protection.
	GenerateState() (string, error)

	// BuildAuthURL constructs the browser-facing authorization URL.
	BuildAuthURL(host, clientID, codeChallenge, state string) string

	// ListenForCallback binds the local redirect address.
	// Fails immediately if the address is already in use.
	ListenForCallback() (CallbackListener, error)

	// ExchangeCode exchanges an authorization code for tokens.
	ExchangeCode(ctx context.Context, host, clientID, code, codeVerifier string) (*domain.OAuth2Token, error)

	// RefreshToken mints a new token pair from a refresh token.
	RefreshToken(ctx context.Context, host, clientID, refreshToken string) (*domain.OAuth2Token, error)
}

// CallbackListener waits for exactly one authorization redirect.
type CallbackListener interface {
	// Wait blocks until the redirect arrives, ctx is cancelled, or the
	// connection fails. The listener is closed when Wait returns.
	Wait(ctx context.Context) (*domain.AuthorizationCallback, error)

	// Close releases the bound address without waiting.
	Close() error
}

// BrowserOpener opens a URL in the user's browser.
type BrowserOpener interface {
	Open(url string) error
}
