package predictor

import (
	"fmt"
	"net/url"
	"time"
)

// DefaultURL is the endpoint of a locally running prediction service.
const DefaultURL = "http://localhost:5000/predict"

// Config defines how the HTTP client reaches the prediction service.
type Config struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("predictor url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("predictor url: unsupported scheme %q", u.Scheme)
	}
	return nil
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
