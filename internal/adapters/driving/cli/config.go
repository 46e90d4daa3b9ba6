package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the CLI configuration",
	Long: `Without flags, print the current configuration.
With flags, update the given values and save.

Setting --token switches to a personal access token and removes any
OAuth2 login.

GITLAB_HOST, GITLAB_TOKEN and GITLAB_PROJECT (also read from .env) override
the saved values for a single run and are never written to the file.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// Flags for config.
var (
	configHost    string
	configToken   string
	configProject string
)

func init() {
	configCmd.Flags().StringVar(&configHost, "host", "", "GitLab base URL, e.g. https://gitlab.example.com")
	configCmd.Flags().StringVar(&configToken, "token", "", "personal access token")
	configCmd.Flags().StringVar(&configProject, "project", "", "default project path, e.g. group/project")

	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if configHost == "" && configToken == "" && configProject == "" {
		project := cfg.Project
		if project == "" {
			project = "(not set)"
		}
		cmd.Println("Current configuration:")
		cmd.Printf("  host: %s\n", cfg.HostOrDefault())
		cmd.Printf("  token: %s\n", mask(cfg.Token))
		cmd.Printf("  project: %s\n", project)
		if cfg.OAuth2 != nil {
			cmd.Println("  oauth2: configured (see 'gitlab auth status')")
		}
		cmd.Printf("  file: %s\n", configService.Path())
		return nil
	}

	if configHost != "" {
		cfg.Host = configHost
	}
	if configToken != "" {
		cfg.SetStaticToken(configToken)
	}
	if configProject != "" {
		cfg.Project = configProject
	}

	if err := configService.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	cmd.Println("Configuration saved.")
	return nil
}
