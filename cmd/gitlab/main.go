package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/custodia-labs/gitlab-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/gitlab-cli/internal/adapters/driven/gitlab"
	"github.com/custodia-labs/gitlab-cli/internal/adapters/driven/oauth"
	"github.com/custodia-labs/gitlab-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/gitlab-cli/internal/browser"
	"github.com/custodia-labs/gitlab-cli/internal/core/services"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cli.SetVersion(version)

	// Ctrl-C aborts a pending login wait or an in-flight request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	configPath, err := file.DefaultPath()
	if err != nil {
		logger.Error("failed to locate config directory: %v", err)
		return 1
	}
	configStore := file.NewConfigStore(configPath)

	oauthHandler := oauth.NewOAuthHandler()
	authSvc := services.NewAuthService(oauthHandler, configStore, browser.Opener{})

	cli.SetServices(&cli.Services{
		Auth:      authSvc,
		Config:    configStore,
		APIClient: gitlab.NewClientFactory(gitlab.WithUserAgent("gitlab-cli/" + version)),
	})

	if err := cli.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
