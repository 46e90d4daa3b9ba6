package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

// AuthService drives the OAuth2 login, refresh and bearer-token resolution.
// The config is never held between calls; every method works on the
// *domain.Config it is given and persists through the store.
type AuthService struct {
	oauth   driven.OAuthHandler
	store   driven.ConfigStore
	browser driven.BrowserOpener
	now     func() time.Time
}

// Ensure AuthService implements the interface.
var _ driving.AuthService = (*AuthService)(nil)

// AuthServiceOption configures an AuthService.
type AuthServiceOption func(*AuthService)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new AuthService.
// browser may be nil, in which case the authorization URL is only reported.
func NewAuthService(
	oauth driven.OAuthHandler,
	store driven.ConfigStore,
	browser driven.BrowserOpener,
	opts ...AuthServiceOption,
) *AuthService {
	s := &AuthService{
		oauth:   oauth,
		store:   store,
		browser: browser,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login runs the authorization-code flow with PKCE.
// The callback address is bound before the browser is opened so a fast
// redirect can never arrive at a closed port. Nothing is persisted unless
// the whole exchange succeeds.
func (s *AuthService) Login(ctx context.Context, cfg *domain.Config, opts driving.LoginOptions) error {
	host := cfg.HostOrDefault()
	if opts.Host != "" {
		host = strings.TrimRight(opts.Host, "/")
	}
	clientID := opts.ClientID
	if clientID == "" {
		clientID = domain.DefaultClientID
	}

	pkce, err := s.oauth.GeneratePKCE()
	if err != nil {
		return fmt.Errorf("generate PKCE codes: %w", err)
	}
	state, err := s.oauth.GenerateState()
	if err != nil {
		return fmt.Errorf("generate state: %w", err)
	}

	listener, err := s.oauth.ListenForCallback()
	if err != nil {
		return err
	}
	defer listener.Close()

	authURL := s.oauth.BuildAuthURL(host, clientID, pkce.CodeChallenge, state)
	if opts.OnAuthURL != nil {
		opts.OnAuthURL(authURL)
	}

	if !opts.NoBrowser && s.browser != nil {
		if err := s.browser.Open(authURL); err != nil {
			logger.Warn("failed to open browser: %v", err)
		}
	}

	if opts.OnWaiting != nil {
		opts.OnWaiting()
	}

	callback, err := listener.Wait(ctx)
	if err != nil {
		return err
	}
	if callback.State != state {
		return domain.ErrStateMismatch
	}
	logger.Debug("authorization code received for %s", host)

	token, err := s.oauth.ExchangeCode(ctx, host, clientID, callback.Code, pkce.CodeVerifier)
	if err != nil {
		return err
	}

	cfg.SetOAuth2Token(token)
	if opts.Host != "" {
		cfg.Host = opts.Host
	}

	if err := s.store.Save(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// Refresh replaces the OAuth2 record with a freshly minted one and saves
// the config. On failure the stored record is left untouched.
func (s *AuthService) Refresh(ctx context.Context, cfg *domain.Config) error {
	if cfg.OAuth2 == nil {
		return domain.ErrNoOAuth2Config
	}

	current := cfg.OAuth2
	token, err := s.oauth.RefreshToken(ctx, cfg.HostOrDefault(), current.ClientID, current.RefreshToken)
	if err != nil {
		return err
	}

	cfg.OAuth2 = token
	if err := s.store.Save(cfg); err != nil {
		return fmt.Errorf("save refreshed token: %w", err)
	}

	logger.Debug("access token refreshed, expires at %s", token.ExpiresAt.Format(time.RFC3339))
	return nil
}

// EnsureFresh refreshes the OAuth2 record if it has expired.
// A missing record or an unexpired one costs no network call.
func (s *AuthService) EnsureFresh(ctx context.Context, cfg *domain.Config) error {
	if cfg.OAuth2 == nil || !cfg.OAuth2.IsExpired(s.now()) {
		return nil
	}

	logger.Info("access token expired at %s, refreshing", cfg.OAuth2.ExpiresAt.Format(time.RFC3339))
	return s.Refresh(ctx, cfg)
}

// CurrentBearerToken returns the token to send with API requests.
func (s *AuthService) CurrentBearerToken(cfg *domain.Config) (string, error) {
	cred, err := domain.ResolveCredential(cfg, s.now())
	if err != nil {
		return "", err
	}
	logger.Debug("using %s credential", cred.Kind())
	return cred.BearerToken(), nil
}

// Status reports the configured credential without any network call.
func (s *AuthService) Status(cfg *domain.Config) driving.AuthStatus {
	status := driving.AuthStatus{
		State: driving.AuthStateUnauthenticated,
		Host:  cfg.HostOrDefault(),
	}

	switch {
	case cfg.OAuth2 != nil:
		status.State = driving.AuthStateOAuth2
		status.ClientID = cfg.OAuth2.ClientID
		status.ExpiresAt = cfg.OAuth2.ExpiresAt
		status.Expired = cfg.OAuth2.IsExpired(s.now())
	case cfg.Token != "":
		status.State = driving.AuthStateStatic
	}

	return status
}
