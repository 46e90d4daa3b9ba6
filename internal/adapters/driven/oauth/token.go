package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

// Token response errors.
var (
	ErrMissingAccessToken  = errors.New("missing access_token in token response")
	ErrMissingRefreshToken = errors.New("missing refresh_token in token response")
)

// TokenClient talks to the GitLab token endpoint.
type TokenClient struct {
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenClient creates a token client. A nil client uses http.DefaultClient.
func NewTokenClient(client *http.Client) *TokenClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &TokenClient{
		httpClient: client,
		now:        time.Now,
	}
}

// ExchangeCode trades an authorization code and its verifier for tokens.
func (c *TokenClient) ExchangeCode(
	ctx context.Context,
	host, clientID, code, codeVerifier string,
) (*domain.OAuth2Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {clientID},
		"code":          {code},
		"redirect_uri":  {RedirectURI},
		"code_verifier": {codeVerifier},
	}

	body, err := c.post(ctx, host, form, "token exchange")
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return ParseTokenResponse(clientID, body, c.now())
}

// Refresh trades a refresh token for a new token pair.
func (c *TokenClient) Refresh(
	ctx context.Context,
	host, clientID, refreshToken string,
) (*domain.OAuth2Token, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {clientID},
		"refresh_token": {refreshToken},
	}

	body, err := c.post(ctx, host, form, "token refresh")
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	return ParseTokenResponse(clientID, body, c.now())
}

// post sends form to the token endpoint. Non-2xx responses become an error
// carrying the raw body.
func (c *TokenClient) post(ctx context.Context, host string, form url.Values, op string) ([]byte, error) {
	endpoint := baseURL(host) + tokenPath

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	logger.WithField("grant_type", form.Get("grant_type")).Debug("POST " + endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s failed with status %d: %s", op, resp.StatusCode, string(body))
	}

	return body, nil
}

// ParseTokenResponse builds a token record from a token endpoint response.
// A missing or non-positive expires_in falls back to the default lifetime.
func ParseTokenResponse(clientID string, body []byte, issuedAt time.Time) (*domain.OAuth2Token, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("parse token response: invalid JSON: %s", string(body))
	}

	result := gjson.ParseBytes(body)

	accessToken, ok := stringField(result, "access_token")
	if !ok {
		return nil, ErrMissingAccessToken
	}
	refreshToken, ok := stringField(result, "refresh_token")
	if !ok {
		return nil, ErrMissingRefreshToken
	}

	expiresIn := time.Duration(result.Get("expires_in").Int()) * time.Second

	return domain.NewOAuth2Token(clientID, accessToken, refreshToken, expiresIn, issuedAt), nil
}

// stringField returns a non-empty JSON string at path. Other types count as missing.
func stringField(result gjson.Result, path string) (string, bool) {
	r := result.Get(path)
	if r.Type != gjson.String || r.Str == "" {
		return "", false
	}
	return r.Str, true
}
