// Package twelvedata provides a client for the Twelve Data market API.
package twelvedata

import (
	"time"

	"index_backend/internal/platform/config"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string
	BaseURL string // e.g. "https://api.twelvedata.com"
	Timeout time.Duration
}

// ConfigFrom extracts the client settings from the application config.
func ConfigFrom(c config.TwelveDataConfig) Config {
	return Config{
		APIKey:  c.APIKey,
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
	}
}
