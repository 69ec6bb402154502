// Package session wires the environment credentials and the shared
// configuration into ready-to-use API clients for the commands.
package session

import (
	"github.com/hashicorp/go-hclog"

	"github.com/appsec-tools/scmsync/internal/github"
	"github.com/appsec-tools/scmsync/internal/semgrep"
	"github.com/appsec-tools/scmsync/pkg/shared/config"
	"github.com/appsec-tools/scmsync/pkg/shared/errors"
)

// Session carries everything a command needs to talk to the collaborators.
type Session struct {
	Config *config.Config
	Logger hclog.Logger

	env *config.Env
}

// New loads the environment credentials and binds them to the configuration.
func New(cfg *config.Config, logger hclog.Logger) (*Session, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}
	return &Session{Config: cfg, Logger: logger, env: env}, nil
}

// GhesURL resolves the GitHub Enterprise Server URL. A command-line override
// wins over the GHES_URL environment variable, which wins over the
// github.base_url config directive.
func (s *Session) GhesURL(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if s.env.GhesURL != "" {
		return s.env.GhesURL, nil
	}
	if s.Config != nil && s.Config.Github.BaseURL != "" {
		return s.Config.Github.BaseURL, nil
	}
	return "", errors.NewValidationError("GHES URL is not set; pass --ghes-url or set the GHES_URL environment variable")
}

// GithubClient builds a GHES API client, returning the resolved server URL
// alongside it so callers can reuse it for config matching.
func (s *Session) GithubClient(urlOverride string) (*github.Client, string, error) {
	ghesURL, err := s.GhesURL(urlOverride)
	if err != nil {
		return nil, "", err
	}
	if s.env.GhesToken == "" {
		return nil, "", errors.NewValidationError("the GHES_TOKEN environment variable is not set")
	}

	client, err := github.New(s.Config, s.Logger, ghesURL, s.env.GhesToken)
	if err != nil {
		return nil, "", err
	}
	return client, ghesURL, nil
}

// GhesToken exposes the server credential for commands that store it on a
// new SCM config.
func (s *Session) GhesToken() string {
	return s.env.GhesToken
}

// SemgrepClient builds a Semgrep API client from the environment token. The
// semgrep.base_url config directive overrides the default API root unless
// SEMGREP_API_URL was set explicitly.
func (s *Session) SemgrepClient() (*semgrep.Client, error) {
	if s.env.SemgrepToken == "" {
		return nil, errors.NewValidationError("the SEMGREP_APP_TOKEN environment variable is not set")
	}

	baseURL := s.env.SemgrepURL
	if baseURL == semgrep.DefaultBaseURL && s.Config != nil && s.Config.Semgrep.BaseURL != "" {
		baseURL = s.Config.Semgrep.BaseURL
	}
	return semgrep.New(s.Config, s.Logger, baseURL, s.env.SemgrepToken)
}
