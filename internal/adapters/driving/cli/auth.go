package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driving"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with GitLab using OAuth2",
	Long: `Log in through the browser using the OAuth2 authorization code flow with PKCE.

A one-shot listener on 127.0.0.1:7171 receives the redirect. The resulting
tokens replace any personal access token in the configuration.

The listener answers only the first connection it receives. If the browser
opens an idle connection first, the login times out after 10 seconds; run
the command again.

Examples:
  gitlab auth login
  gitlab auth login --host https://gitlab.example.com --client-id <application-id>`,
	Args: cobra.NoArgs,
	RunE: runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	Args:  cobra.NoArgs,
	RunE:  runAuthStatus,
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the OAuth2 access token now",
	Args:  cobra.NoArgs,
	RunE:  runAuthRefresh,
}

// Flags for auth.
var (
	loginClientID  string
	loginHost      string
	loginNoBrowser bool
	statusJSON     bool
)

func init() {
	authLoginCmd.Flags().StringVar(&loginClientID, "client-id", "",
		"OAuth2 application ID (defaults to the public gitlab.com application)")
	authLoginCmd.Flags().StringVar(&loginHost, "host", "", "GitLab host URL (overrides and saves the configured host)")
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the authorization URL instead of opening it")

	authStatusCmd.Flags().BoolVar(&statusJSON, "json", false, "print status as JSON")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authRefreshCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := driving.LoginOptions{
		Host:      loginHost,
		ClientID:  loginClientID,
		NoBrowser: loginNoBrowser,
		OnAuthURL: func(authURL string) {
			if !loginNoBrowser {
				cmd.Println("Opening browser for authorization...")
				cmd.Printf("If browser doesn't open, visit: %s\n", authURL)
				return
			}
			cmd.Printf("Visit this URL to authorize: %s\n", authURL)
		},
		OnWaiting: func() {
			cmd.Println("Waiting for authorization callback...")
		},
	}

	if err := authService.Login(cmd.Context(), cfg, opts); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Println("Authentication successful!")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	status := authService.Status(cfg)

	if statusJSON {
		out, err := statusDocument(status)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(pretty.Pretty(out)))
		return nil
	}

	switch status.State {
	case driving.AuthStateOAuth2:
		cmd.Println("OAuth2 authenticated")
		cmd.Printf("  host: %s\n", status.Host)
		cmd.Printf("  client_id: %s\n", mask(status.ClientID))
		cmd.Printf("  expires_at: %s\n", status.ExpiresAt.Format(time.RFC3339))
		cmd.Printf("  expired: %t\n", status.Expired)
	case driving.AuthStateStatic:
		cmd.Println("Using static token (legacy)")
		cmd.Printf("  host: %s\n", status.Host)
	default:
		cmd.Println("Not authenticated")
	}
	return nil
}

// statusDocument renders status as a JSON object.
func statusDocument(status driving.AuthStatus) ([]byte, error) {
	doc := []byte(`{}`)
	var err error

	set := func(path string, value any) {
		if err == nil {
			doc, err = sjson.SetBytes(doc, path, value)
		}
	}

	set("state", string(status.State))
	set("host", status.Host)
	if status.State == driving.AuthStateOAuth2 {
		set("client_id", mask(status.ClientID))
		set("expires_at", status.ExpiresAt.Format(time.RFC3339))
		set("expired", status.Expired)
	}

	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}
	return doc, nil
}

func runAuthRefresh(cmd *cobra.Command, _ []string) error {
	if authService == nil {
		return errors.New("auth service not configured")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := authService.Refresh(cmd.Context(), cfg); err != nil {
		return err
	}

	cmd.Printf("Token refreshed, expires at %s\n", cfg.OAuth2.ExpiresAt.Format(time.RFC3339))
	return nil
}
