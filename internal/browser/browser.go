// Package browser opens URLs in the user's default web browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/skratchdot/open-golang/open"

	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

// linuxBrowsers are tried in order when xdg-open via open-golang fails.
var linuxBrowsers = []string{"xdg-open", "x-www-browser", "www-browser", "firefox", "chromium", "google-chrome"}

// Compile-time check.
var _ driven.BrowserOpener = Opener{}

// Opener implements driven.BrowserOpener.
type Opener struct{}

// Open launches url without waiting for the browser to exit.
func (Opener) Open(url string) error {
	return OpenURL(url)
}

// OpenURL opens url with open-golang and falls back to platform commands.
func OpenURL(url string) error {
	err := open.Start(url)
	if err == nil {
		logger.Debug("opened browser with default handler")
		return nil
	}

	logger.Debug("default handler failed: %v, trying platform-specific commands", err)
	return openPlatformSpecific(url)
}

func openPlatformSpecific(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd", "netbsd":
		for _, name := range linuxBrowsers {
			if _, err := exec.LookPath(name); err == nil {
				cmd = exec.Command(name, url)
				break
			}
		}
		if cmd == nil {
			return fmt.Errorf("no suitable browser found")
		}
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	logger.Debug("running %s", cmd.Path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start browser command: %w", err)
	}
	// Reap the child so it does not linger as a zombie.
	go func() { _ = cmd.Wait() }()
	return nil
}
