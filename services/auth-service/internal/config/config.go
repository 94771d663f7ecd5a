package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// AuthServiceConfig holds the configuration for the auth service.
type AuthServiceConfig struct {
	Server ServerConfig
	Mongo  MongoConfig
	Token  TokenConfig
	Auth   ProviderConfig
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port    string `env:"APP_PORT"     envDefault:"8080"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

// MongoConfig holds the database settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DB"  envDefault:"launchkit"`
}

// TokenConfig holds the session token settings.
type TokenConfig struct {
	Secret     string        `env:"AUTH_SECRET,required"`
	Issuer     string        `env:"AUTH_ISSUER"      envDefault:"launchkit"`
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"720h"`
}

// ProviderConfig carries the provider feature flags and credentials. The
// NEXT_PUBLIC_* names are kept as-is so the service reads the same environment
// the web frontend ships with.
type ProviderConfig struct {
	GoogleOneTapEnabled  bool   `env:"NEXT_PUBLIC_AUTH_GOOGLE_ONE_TAP_ENABLED"`
	GoogleOneTapClientID string `env:"NEXT_PUBLIC_AUTH_GOOGLE_ID"`

	GoogleEnabled      bool   `env:"NEXT_PUBLIC_AUTH_GOOGLE_ENABLED"`
	GoogleClientID     string `env:"AUTH_GOOGLE_ID"`
	GoogleClientSecret string `env:"AUTH_GOOGLE_SECRET"`

	GitHubEnabled      bool   `env:"NEXT_PUBLIC_AUTH_GITHUB_ENABLED"`
	GitHubClientID     string `env:"AUTH_GITHUB_ID"`
	GitHubClientSecret string `env:"AUTH_GITHUB_SECRET"`
}

// Load parses the configuration from environment variables.
func Load(logger *zerolog.Logger) *AuthServiceConfig {
	cfg, err := env.ParseAs[AuthServiceConfig]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	return &cfg
}
