package crossref

import (
	"errors"
	"net/url"
	"time"

	"github.com/scholarly/backcontent/internal/infrastructure/config"
)

// DefaultBaseURL is the public Crossref REST API
const DefaultBaseURL = "https://api.crossref.org"

// Config holds the Crossref client settings
type Config struct {
	// BaseURL is the REST API root, without a trailing /works
	BaseURL string
	// Mailto puts requests in the polite pool when set
	Mailto string
	// UserAgent is sent on every request
	UserAgent string
	// Timeout bounds a single lookup
	Timeout time.Duration
	// CacheTTL is how long a successful response is reused
	CacheTTL time.Duration
}

// Errors for Crossref configuration
var (
	ErrConfigMissingBaseURL = errors.New("crossref: base url is required")
	ErrConfigInvalidBaseURL = errors.New("crossref: base url must be absolute")
)

// NewConfig builds a client config from the application config
func NewConfig(c config.CrossrefConfig) *Config {
	return &Config{
		BaseURL:   c.BaseURL,
		Mailto:    c.Mailto,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
		CacheTTL:  c.CacheTTL,
	}
}

// Validate checks the config and fills defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrConfigInvalidBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = "backcontent/1.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	return nil
}
