package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driving"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// Services holds injected service implementations for CLI commands.
	authService   driving.AuthService
	configService driving.ConfigService
	newAPIClient  driving.APIClientFactory
)

// Services holds configuration for CLI commands.
type Services struct {
	Auth      driving.AuthService
	Config    driving.ConfigService
	APIClient driving.APIClientFactory
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	authService = s.Auth
	configService = s.Config
	newAPIClient = s.APIClient
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "gitlab",
	Short: "Command-line client for the GitLab REST API",
	Long: `gitlab talks to the GitLab REST API (gitlab.com or a self-managed instance)
with an OAuth2 login or a personal access token.

Run 'gitlab auth login' to authenticate in the browser, or
'gitlab config --token <token>' to use a personal access token.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which commands use for
// network calls and the login callback wait.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")

	// Use PersistentPreRunE to set verbose mode before any command executes
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return nil
	}
}

// loadConfig reads the configuration once for the running command.
func loadConfig() (*domain.Config, error) {
	if configService == nil {
		return nil, errors.New("config service not configured")
	}
	cfg, err := configService.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// mask shows the first eight characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) > 8 {
		secret = secret[:8]
	}
	return secret + "..."
}
