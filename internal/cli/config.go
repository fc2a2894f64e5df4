package cli

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds CLI client configuration
type Config struct {
	ServerURL      string
	Format         string
	Quiet          bool
	RequestTimeout time.Duration
}

// LoadConfig validates flag values into a CLI configuration
func LoadConfig(serverURL, format string, quiet bool) (*Config, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %s", serverURL)
	}

	switch format {
	case "table", "json":
	default:
		return nil, fmt.Errorf("unsupported format: %s (expected table or json)", format)
	}

	return &Config{
		ServerURL:      serverURL,
		Format:         format,
		Quiet:          quiet,
		RequestTimeout: 180 * time.Second,
	}, nil
}
