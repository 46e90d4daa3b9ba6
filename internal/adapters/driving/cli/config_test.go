package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
)

func TestConfigCmd_ShowsCurrentConfiguration(t *testing.T) {
	// Given
	cfg := &mockConfigService{cfg: &domain.Config{Token: "glpat-1234567890", Project: "group/project"}}
	setupTestServices(t, &mockAuthService{}, cfg, nil)

	// When
	out, err := executeCommand(t, "config")

	// Then
	require.NoError(t, err)
	assert.Contains(t, out, "host: https://gitlab.com")
	assert.Contains(t, out, "token: glpat-12...")
	assert.NotContains(t, out, "1234567890")
	assert.Contains(t, out, "project: group/project")
	assert.Contains(t, out, "file: /home/test/.config/gitlab-cli/config.json")
	assert.Zero(t, cfg.saves)
}

func TestConfigCmd_ShowsUnsetValues(t *testing.T) {
	setupTestServices(t, &mockAuthService{}, &mockConfigService{}, nil)

	out, err := executeCommand(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "token: (not set)")
	assert.Contains(t, out, "project: (not set)")
}

func TestConfigCmd_SetValues(t *testing.T) {
	cfg := &mockConfigService{}
	setupTestServices(t, &mockAuthService{}, cfg, nil)

	out, err := executeCommand(t, "config", "--host", "https://gitlab.example.com", "--project", "a/b")

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved.")
	assert.Equal(t, 1, cfg.saves)
	assert.Equal(t, "https://gitlab.example.com", cfg.cfg.Host)
	assert.Equal(t, "a/b", cfg.cfg.Project)
}

func TestConfigCmd_TokenClearsOAuth2(t *testing.T) {
	// Given an OAuth2 login
	cfg := &mockConfigService{cfg: &domain.Config{OAuth2: &domain.OAuth2Token{
		ClientID: "cid", AccessToken: "A", RefreshToken: "R", ExpiresAt: time.Now().Add(time.Hour),
	}}}
	setupTestServices(t, &mockAuthService{}, cfg, nil)

	// When
	_, err := executeCommand(t, "config", "--token", "glpat-new")

	// Then
	require.NoError(t, err)
	assert.Equal(t, "glpat-new", cfg.cfg.Token)
	assert.Nil(t, cfg.cfg.OAuth2)
}

func TestConfigCmd_SaveError(t *testing.T) {
	setupTestServices(t, &mockAuthService{}, &mockConfigService{saveErr: errors.New("read-only")}, nil)

	_, err := executeCommand(t, "config", "--project", "a/b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save config: read-only")
}
