package driving

import "github.com/custodia-labs/gitlab-cli/internal/core/domain"

// ConfigService loads and saves the CLI configuration.
type ConfigService interface {
	// Load returns the configuration with environment overrides applied.
	Load() (*domain.Config, error)

	// Save persists cfg. Environment overrides are not written.
	Save(cfg *domain.Config) error

	// Path returns where the configuration lives.
	Path() string
}
