// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ANAF endpoint URLs. The OAuth endpoints are shared between environments;
// only the REST API base differs.
const (
	AuthorizeEndpoint = "https://logincert.anaf.ro/anaf-oauth2/v1/authorize"
	TokenEndpoint     = "https://logincert.anaf.ro/anaf-oauth2/v1/token"

	testAPIBase = "https://api.anaf.ro/test/FCTEL/rest"
	prodAPIBase = "https://api.anaf.ro/prod/FCTEL/rest"
)

// Environment selects which ANAF deployment the client talks to.
type Environment string

const (
	EnvironmentTest       Environment = "test"
	EnvironmentProduction Environment = "prod"
)

// Config holds everything the library needs to talk to e-Factura.
type Config struct {
	Environment    Environment `yaml:"environment" env:"EFACTURA_ENV" env-default:"test"`
	ClientID       string      `yaml:"client_id" env:"EFACTURA_CLIENT_ID"`
	ClientSecret   string      `yaml:"client_secret" env:"EFACTURA_CLIENT_SECRET"`
	RedirectURI    string      `yaml:"redirect_uri" env:"EFACTURA_REDIRECT_URI"`
	CIF            string      `yaml:"cif" env:"EFACTURA_CIF"`
	TimeoutSeconds int         `yaml:"timeout_seconds" env:"EFACTURA_TIMEOUT_SECONDS" env-default:"30"`
	Debug          bool        `yaml:"debug" env:"EFACTURA_DEBUG" env-default:"false"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the environment selector.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvironmentTest, EnvironmentProduction:
		return nil
	default:
		return fmt.Errorf("unknown environment %q (want %q or %q)", c.Environment, EnvironmentTest, EnvironmentProduction)
	}
}

// APIBaseURL returns the REST API base for the configured environment.
func (c *Config) APIBaseURL() string {
	if c.Environment == EnvironmentProduction {
		return prodAPIBase
	}
	return testAPIBase
}

// Timeout returns the configured HTTP timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
