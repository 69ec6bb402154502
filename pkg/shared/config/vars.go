package config

import (
	"time"
)

type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Github     Github     `yaml:"github"`
	Semgrep    Semgrep    `yaml:"semgrep"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HTTPClient struct {
	Debug            bool            `yaml:"debug"`
	RetryCount       int             `yaml:"retry_count"`
	RetryWaitTime    time.Duration   `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration   `yaml:"retry_max_wait_time"`
	Timeout          time.Duration   `yaml:"timeout"`
	TLSClientConfig  TLSClientConfig `yaml:"tls_client_config"`
	Proxy            Proxy           `yaml:"proxy"`
}

type TLSClientConfig struct {
	Verify *bool `yaml:"verify"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Github holds non-secret settings for the GitHub Enterprise Server client.
// The server URL and token usually come from the environment (GHES_URL,
// GHES_TOKEN); a base_url set here acts as a fallback for the URL.
type Github struct {
	BaseURL string `yaml:"base_url"`
}

// Semgrep holds non-secret settings for the Semgrep API client.
type Semgrep struct {
	BaseURL string `yaml:"base_url"`
}
