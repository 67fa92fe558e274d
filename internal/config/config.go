// Package config loads runtime configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/stevenovak55/bmnboston-sub021/internal/credentials"
)

// Config holds everything the client core needs to run.
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// The three endpoint namespaces resolve against these roots.
	AppBaseURL  string `envconfig:"MLD_APP_BASE_URL" default:"https://bmnboston.com/wp-json/mld-app/v1"`
	SiteBaseURL string `envconfig:"MLD_SITE_BASE_URL" default:"https://bmnboston.com"`
	MLDBaseURL  string `envconfig:"MLD_V1_BASE_URL" default:"https://bmnboston.com/wp-json/mld/v1"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s"`
	RefreshTimeout time.Duration `envconfig:"REFRESH_TIMEOUT" default:"30s"`

	// Empty paths fall back to the XDG locations.
	CredentialsPath       string `envconfig:"CREDENTIALS_PATH"`
	LegacyCredentialsPath string `envconfig:"LEGACY_CREDENTIALS_PATH"`
}

// Load reads envFile if it exists, then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.CredentialsPath == "" {
		cfg.CredentialsPath = credentials.DefaultStorePath()
	}
	if cfg.LegacyCredentialsPath == "" {
		cfg.LegacyCredentialsPath = credentials.LegacyStorePath()
	}
	return &cfg, nil
}
