package driven

import "github.com/custodia-labs/gitlab-cli/internal/core/domain"

// ConfigStore persists the CLI configuration.
type ConfigStore interface {
	// Load reads the configuration. A missing file yields an empty Config.
	Load() (*domain.Config, error)

	// Save writes the whole configuration. Either the new content is on
	// disk when Save returns nil, or the previous file is left untouched.
	Save(cfg *domain.Config) error

	// Path returns the location of the configuration file.
	Path() string
}
