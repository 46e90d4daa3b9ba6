package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driving"
)

// mockConfigService implements driving.ConfigService for testing.
type mockConfigService struct {
	cfg     *domain.Config
	loadErr error
	saveErr error
	saves   int
}

func (m *mockConfigService) Load() (*domain.Config, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cfg == nil {
		m.cfg = &domain.Config{}
	}
	return m.cfg, nil
}

func (m *mockConfigService) Save(cfg *domain.Config) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cfg = cfg
	m.saves++
	return nil
}

func (m *mockConfigService) Path() string {
	return "/home/test/.config/gitlab-cli/config.json"
}

// mockAuthService implements driving.AuthService for testing.
type mockAuthService struct {
	loginErr    error
	refreshErr  error
	ensureErr   error
	status      driving.AuthStatus
	loginOpts   driving.LoginOptions
	authURL     string
	token       *domain.OAuth2Token
	ensureCalls int
}

func (m *mockAuthService) Login(_ context.Context, cfg *domain.Config, opts driving.LoginOptions) error {
	m.loginOpts = opts
	if opts.OnAuthURL != nil {
		opts.OnAuthURL(m.authURL)
	}
	if opts.OnWaiting != nil {
		opts.OnWaiting()
	}
	if m.loginErr != nil {
		return m.loginErr
	}
	cfg.SetOAuth2Token(m.token)
	return nil
}

func (m *mockAuthService) Refresh(_ context.Context, cfg *domain.Config) error {
	if m.refreshErr != nil {
		return m.refreshErr
	}
	if cfg.OAuth2 == nil {
		return domain.ErrNoOAuth2Config
	}
	cfg.OAuth2 = m.token
	return nil
}

func (m *mockAuthService) EnsureFresh(_ context.Context, _ *domain.Config) error {
	m.ensureCalls++
	return m.ensureErr
}

func (m *mockAuthService) CurrentBearerToken(cfg *domain.Config) (string, error) {
	if cfg.OAuth2 != nil {
		return cfg.OAuth2.AccessToken, nil
	}
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	return "", domain.ErrNoToken
}

func (m *mockAuthService) Status(_ *domain.Config) driving.AuthStatus {
	return m.status
}

// mockAPIClient implements driving.APIClient for testing.
type mockAPIClient struct {
	host     string
	token    string
	method   string
	endpoint string
	body     []byte
	response []byte
	err      error
	calls    int
}

func (m *mockAPIClient) Raw(_ context.Context, method, endpoint string, body []byte) ([]byte, error) {
	m.calls++
	m.method = method
	m.endpoint = endpoint
	m.body = body
	return m.response, m.err
}

func (m *mockAPIClient) factory() driving.APIClientFactory {
	return func(host, token string) driving.APIClient {
		m.host = host
		m.token = token
		return m
	}
}

// resetFlags restores every command flag variable to its default.
func resetFlags() {
	verbose = false
	configHost, configToken, configProject = "", "", ""
	loginClientID, loginHost, loginNoBrowser, statusJSON = "", "", false, false
	apiMethod, apiData, apiQuery, apiProject = "", "", "", ""
	apiRawFields, apiFields = nil, nil
}

// setupTestServices injects mock services and returns a cleanup func.
func setupTestServices(t *testing.T, auth *mockAuthService, cfg *mockConfigService, api *mockAPIClient) {
	t.Helper()
	oldAuth, oldConfig, oldAPI := authService, configService, newAPIClient

	// Assign through nil checks so a nil mock leaves a nil interface.
	authService, configService, newAPIClient = nil, nil, nil
	if auth != nil {
		authService = auth
	}
	if cfg != nil {
		configService = cfg
	}
	if api != nil {
		newAPIClient = api.factory()
	}

	t.Cleanup(func() {
		authService, configService, newAPIClient = oldAuth, oldConfig, oldAPI
	})
}

// executeCommand runs the root command with args and returns combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return buf.String(), err
}
