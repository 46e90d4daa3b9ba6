// Package file provides a JSON file implementation of the config store.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/gitlab-cli/internal/core/domain"
	"github.com/custodia-labs/gitlab-cli/internal/core/ports/driven"
	"github.com/custodia-labs/gitlab-cli/internal/logger"
)

// Environment variables that override file values for a single run.
const (
	EnvToken   = "GITLAB_TOKEN"
	EnvHost    = "GITLAB_HOST"
	EnvProject = "GITLAB_PROJECT"
)

const (
	appDir     = "gitlab-cli"
	configFile = "config.json"
	fileMode   = 0o600
	dirMode    = 0o700
)

// Compile-time check.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore persists the CLI configuration as pretty-printed JSON.
//
// Values taken from the environment are applied on Load but never written
// back: Save keeps the on-disk value for any field still holding its
// override, so exporting GITLAB_TOKEN does not leak into the file.
type ConfigStore struct {
	path    string
	envFile string

	// disk and applied record the state around the last Load, per overridden field.
	disk    map[string]string
	applied map[string]string
}

// Option configures a ConfigStore.
type Option func(*ConfigStore)

// WithEnvFile sets the dotenv file consulted on Load. Empty disables it.
func WithEnvFile(path string) Option {
	return func(s *ConfigStore) {
		s.envFile = path
	}
}

// NewConfigStore creates a store backed by path.
func NewConfigStore(path string, opts ...Option) *ConfigStore {
	s := &ConfigStore{
		path:    path,
		envFile: ".env",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultPath returns <user config dir>/gitlab-cli/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, appDir, configFile), nil
}

// Path returns the config file location.
func (s *ConfigStore) Path() string {
	return s.path
}

// Load reads the config file and applies environment overrides.
// A missing file yields an empty config.
func (s *ConfigStore) Load() (*domain.Config, error) {
	cfg := &domain.Config{}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("no config file at %s, starting empty", s.path)
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", s.path, err)
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", s.path, err)
		}
	}

	s.applyOverrides(cfg)
	return cfg, nil
}

// Save writes cfg atomically with owner-only permissions.
func (s *ConfigStore) Save(cfg *domain.Config) error {
	out := s.withoutOverrides(cfg)

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+configFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("set config permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	logger.Debug("saved config to %s", s.path)
	return nil
}

func (s *ConfigStore) applyOverrides(cfg *domain.Config) {
	env := s.environment()

	s.disk = make(map[string]string)
	s.applied = make(map[string]string)

	override := func(key string, field *string) {
		value := env[key]
		if value == "" {
			return
		}
		s.disk[key] = *field
		s.applied[key] = value
		*field = value
		logger.Debug("using %s from environment", key)
	}

	override(EnvToken, &cfg.Token)
	override(EnvHost, &cfg.Host)
	override(EnvProject, &cfg.Project)
}

// withoutOverrides returns a copy of cfg with unchanged overridden fields
// restored to their on-disk values.
func (s *ConfigStore) withoutOverrides(cfg *domain.Config) *domain.Config {
	out := *cfg

	restore := func(key string, field *string) {
		applied, ok := s.applied[key]
		if ok && *field == applied {
			*field = s.disk[key]
		}
	}

	restore(EnvToken, &out.Token)
	restore(EnvHost, &out.Host)
	restore(EnvProject, &out.Project)
	return &out
}

// environment merges the dotenv file with the process environment; the
// process environment wins.
func (s *ConfigStore) environment() map[string]string {
	env := make(map[string]string)

	if s.envFile != "" {
		values, err := godotenv.Read(s.envFile)
		switch {
		case err == nil:
			for _, key := range []string{EnvToken, EnvHost, EnvProject} {
				if v, ok := values[key]; ok {
					env[key] = v
				}
			}
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("ignoring %s: %v", s.envFile, err)
		}
	}

	for _, key := range []string{EnvToken, EnvHost, EnvProject} {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env
}
