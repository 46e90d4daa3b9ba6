package domain

import "strings"

const (
	// DefaultHost is used when no host has been configured.
	DefaultHost = "https://gitlab.com"

	// DefaultClientID is the public OAuth application used by `auth login`
	// when no client ID is given. It is registered on gitlab.com only.
	DefaultClientID = "41d48f9422ebd655dd9cf2947d6979681dfaddc6d0c56f7628f6ada59559af1e"
)

// Config is the persisted CLI configuration.
// It is loaded once per invocation and passed explicitly to everything that
// reads or mutates it.
type Config struct {
	// Host is the GitLab base URL, e.g. https://gitlab.example.com.
	Host string `json:"host,omitempty"`
	// Token is a static personal access token (legacy credential).
	Token string `json:"token,omitempty"`
	// Project is the default project path, e.g. group/project.
	Project string `json:"project,omitempty"`
	// OAuth2 holds the tokens obtained through `auth login`.
	OAuth2 *OAuth2Token `json:"oauth2,omitempty"`
}

// HostOrDefault returns the configured host without a trailing slash,
// falling back to DefaultHost.
func (c *Config) HostOrDefault() string {
	host := strings.TrimRight(strings.TrimSpace(c.Host), "/")
	if host == "" {
		return DefaultHost
	}
	return host
}

// ResolveProject returns override if set, otherwise the default project.
func (c *Config) ResolveProject(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if c.Project != "" {
		return c.Project, nil
	}
	return "", ErrNoProject
}

// SetStaticToken stores a personal access token and drops any OAuth2 record,
// so the two credentials never compete.
func (c *Config) SetStaticToken(token string) {
	c.Token = token
	c.OAuth2 = nil
}

// SetOAuth2Token stores a freshly obtained OAuth2 record and clears the
// legacy static token.
func (c *Config) SetOAuth2Token(token *OAuth2Token) {
	c.OAuth2 = token
	c.Token = ""
}
