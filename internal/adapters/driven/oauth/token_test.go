package oauth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestTokenServer(t *testing.T, status int, response string, captured *url.Values) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		form, err := url.ParseQuery(string(raw))
		assert.NoError(t, err)
		if captured != nil {
			*captured = form
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestHandler(server *httptest.Server) *OAuthHandler {
	return NewOAuthHandler(
		WithHTTPClient(server.Client()),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func TestOAuthHandler_ExchangeCode(t *testing.T) {
	// Given
	var form url.Values
	server := newTestTokenServer(t, http.StatusOK,
		`{"access_token":"A1","refresh_token":"R1","expires_in":3600,"token_type":"Bearer"}`, &form)
	handler := newTestHandler(server)

	// When
	token, err := handler.ExchangeCode(context.Background(), server.URL, "cid", "code-1", "verifier-1")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "cid", token.ClientID)
	assert.Equal(t, "A1", token.AccessToken)
	assert.Equal(t, "R1", token.RefreshToken)
	assert.Equal(t, fixedNow.Add(time.Hour), token.ExpiresAt)

	assert.Equal(t, "authorization_code", form.Get("grant_type"))
	assert.Equal(t, "cid", form.Get("client_id"))
	assert.Equal(t, "code-1", form.Get("code"))
	assert.Equal(t, RedirectURI, form.Get("redirect_uri"))
	assert.Equal(t, "verifier-1", form.Get("code_verifier"))
}

func TestOAuthHandler_RefreshToken(t *testing.T) {
	var form url.Values
	server := newTestTokenServer(t, http.StatusOK,
		`{"access_token":"A2","refresh_token":"R2","expires_in":7200}`, &form)
	handler := newTestHandler(server)

	token, err := handler.RefreshToken(context.Background(), server.URL+"/", "cid", "R1")

	require.NoError(t, err)
	assert.Equal(t, "A2", token.AccessToken)
	assert.Equal(t, "R2", token.RefreshToken)
	assert.Equal(t, "refresh_token", form.Get("grant_type"))
	assert.Equal(t, "cid", form.Get("client_id"))
	assert.Equal(t, "R1", form.Get("refresh_token"))
}

func TestOAuthHandler_ExchangeCode_ErrorIncludesBody(t *testing.T) {
	server := newTestTokenServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`, nil)
	handler := newTestHandler(server)

	token, err := handler.ExchangeCode(context.Background(), server.URL, "cid", "bad", "v")

	assert.Nil(t, token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to exchange authorization code")
	assert.Contains(t, err.Error(), "token exchange failed with status 400")
	assert.Contains(t, err.Error(), `{"error":"invalid_grant"}`)
}

func TestOAuthHandler_RefreshToken_ErrorIncludesBody(t *testing.T) {
	server := newTestTokenServer(t, http.StatusUnauthorized, "revoked", nil)
	handler := newTestHandler(server)

	_, err := handler.RefreshToken(context.Background(), server.URL, "cid", "R1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to refresh token")
	assert.Contains(t, err.Error(), "token refresh failed with status 401: revoked")
}

func TestParseTokenResponse(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantErr    error
		wantExpiry time.Time
	}{
		{
			name:       "explicit expiry",
			body:       `{"access_token":"a","refresh_token":"r","expires_in":60}`,
			wantExpiry: fixedNow.Add(time.Minute),
		},
		{
			name:       "missing expiry defaults to two hours",
			body:       `{"access_token":"a","refresh_token":"r"}`,
			wantExpiry: fixedNow.Add(7200 * time.Second),
		},
		{
			name:    "missing access token",
			body:    `{"refresh_token":"r","expires_in":60}`,
			wantErr: ErrMissingAccessToken,
		},
		{
			name:    "missing refresh token",
			body:    `{"access_token":"a","expires_in":60}`,
			wantErr: ErrMissingRefreshToken,
		},
		{
			name:    "object access token",
			body:    `{"access_token":{"x":1},"refresh_token":"r"}`,
			wantErr: ErrMissingAccessToken,
		},
		{
			name:    "empty access token",
			body:    `{"access_token":"","refresh_token":"r"}`,
			wantErr: ErrMissingAccessToken,
		},
		{
			name:    "numeric refresh token",
			body:    `{"access_token":"a","refresh_token":42}`,
			wantErr: ErrMissingRefreshToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseTokenResponse("cid", []byte(tt.body), fixedNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, token)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExpiry, token.ExpiresAt)
			assert.Equal(t, "cid", token.ClientID)
		})
	}
}

func TestParseTokenResponse_InvalidJSON(t *testing.T) {
	_, err := ParseTokenResponse("cid", []byte("<html>oops</html>"), fixedNow)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}
