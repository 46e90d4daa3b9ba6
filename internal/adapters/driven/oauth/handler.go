// Package oauth implements the GitLab OAuth2 authorization-code flow with PKCE:
// building the authorization URL, receiving the browser redirect on a local
// listener and talking to the token endpoint.
package oauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driven"
)

// GitLab OAuth constants.
const (
	// RedirectURI must match the redirect registered for the application.
	RedirectURI = "http://localhost:7171/auth/redirect"

	// CallbackAddr is where the redirect is received. Loopback only.
	CallbackAddr = "127.0.0.1:7171"

	authorizePath = "/oauth/authorize"
	//nolint:gosec // G101: Not credentials, OAuth endpoint path
	tokenPath = "/oauth/token"

	defaultHTTPTimeout = 30 * time.Second
)

// Scopes requested during login.
var Scopes = []string{"openid", "profile", "read_user", "write_repository", "api"}

// Compile-time check.
var _ driven.OAuthHandler = (*OAuthHandler)(nil)

// OAuthHandler implements OAuth operations for GitLab.
type OAuthHandler struct {
	callbackAddr string
	tokens       *TokenClient
}

// Option configures an OAuthHandler.
type Option func(*OAuthHandler)

// WithCallbackAddr overrides the address the redirect listener binds.
func WithCallbackAddr(addr string) Option {
	return func(h *OAuthHandler) {
		h.callbackAddr = addr
	}
}

// WithHTTPClient sets the client used for token endpoint requests.
func WithHTTPClient(client *http.Client) Option {
	return func(h *OAuthHandler) {
		h.tokens.httpClient = client
	}
}

// WithClock sets the time source used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(h *OAuthHandler) {
		h.tokens.now = now
	}
}

// NewOAuthHandler creates a new GitLab OAuth handler.
func NewOAuthHandler(opts ...Option) *OAuthHandler {
	h := &OAuthHandler{
		callbackAddr: CallbackAddr,
		tokens:       NewTokenClient(&http.Client{Timeout: defaultHTTPTimeout}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// GeneratePKCE creates a verifier and S256 challenge.
func (h *OAuthHandler) GeneratePKCE() (*domain.PKCECodes, error) {
	return GeneratePKCECodes()
}

// GenerateState creates a random state value.
func (h *OAuthHandler) GenerateState() (string, error) {
	return GenerateState()
}

// BuildAuthURL constructs the GitLab authorization URL.
func (h *OAuthHandler) BuildAuthURL(host, clientID, codeChallenge, state string) string {
	return BuildAuthURL(host, clientID, codeChallenge, state)
}

// ListenForCallback binds the redirect address.
func (h *OAuthHandler) ListenForCallback() (driven.CallbackListener, error) {
	l, err := ListenForCallback(h.callbackAddr)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// ExchangeCode exchanges an authorization code for tokens.
func (h *OAuthHandler) ExchangeCode(
	ctx context.Context,
	host, clientID, code, codeVerifier string,
) (*domain.OAuth2Token, error) {
	return h.tokens.ExchangeCode(ctx, host, clientID, code, codeVerifier)
}

// RefreshToken mints a new token pair from a refresh token.
func (h *OAuthHandler) RefreshToken(
	ctx context.Context,
	host, clientID, refreshToken string,
) (*domain.OAuth2Token, error) {
	return h.tokens.Refresh(ctx, host, clientID, refreshToken)
}

// BuildAuthURL returns {host}/oauth/authorize with the PKCE parameters.
// An empty state is omitted.
func BuildAuthURL(host, clientID, codeChallenge, state string) string {
	params := url.Values{
		"client_id":             {clientID},
		"redirect_uri":          {RedirectURI},
		"response_type":         {"code"},
		"scope":                 {strings.Join(Scopes, " ")},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}
	if state != "" {
		params.Set("state", state)
	}

	return baseURL(host) + authorizePath + "?" + params.Encode()
}

func baseURL(host string) string {
	if host == "" {
		host = domain.DefaultHost
	}
	return strings.TrimRight(host, "/")
}
