package citation

import (
	"time"

	"github.com/scholarly/backcontent/internal/infrastructure/config"
)

// Config holds the page fetcher settings
type Config struct {
	UserAgent         string
	Timeout           time.Duration
	MaxBodyBytes      int64
	MaxRedirects      int
	AllowPrivateHosts bool
}

// NewConfig builds a scraper config from the application config
func NewConfig(c config.ScraperConfig) *Config {
	return &Config{
		UserAgent:         c.UserAgent,
		Timeout:           c.Timeout,
		MaxBodyBytes:      c.MaxBodyBytes,
		MaxRedirects:      c.MaxRedirects,
		AllowPrivateHosts: c.AllowPrivateHosts,
	}
}

func (c *Config) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = "backcontent/1.0 (citation import)"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 2 << 20
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = 5
	}
}
