package config

import (
	"fmt"

	"github.com/gassara-kys/envconfig"
)

// Env holds the secrets and endpoint overrides read from the environment.
// Tokens are never accepted through the YAML config file.
type Env struct {
	GhesURL      string `envconfig:"GHES_URL"`
	GhesToken    string `envconfig:"GHES_TOKEN"`
	SemgrepToken string `envconfig:"SEMGREP_APP_TOKEN"`
	SemgrepURL   string `envconfig:"SEMGREP_API_URL" default:"https://semgrep.dev/api"`
}

// LoadEnv reads the environment variables into an Env structure.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &env, nil
}
