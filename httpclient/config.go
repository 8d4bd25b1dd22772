package httpclient

import (
	"net/url"
	"time"

	"github.com/kbukum/diarkit/errors"
)

const (
	defaultTimeout = 30 * time.Second
)

// Config configures the HTTP client.
type Config struct {
	// BaseURL is the base URL prepended to all request paths.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the default request timeout. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Headers are default headers applied to all requests.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return errors.Configuration("timeout", "timeout must be positive")
	}
	if c.BaseURL != "" {
		u, err := url.ParseRequestURI(c.BaseURL)
		if err != nil || u.Host == "" {
			return errors.Configuration("base_url", "base_url must be an absolute URL, got "+c.BaseURL)
		}
	}
	return nil
}
