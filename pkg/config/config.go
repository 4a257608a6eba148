package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Credential transports. Bearer keeps the access token on the client and
// attaches it per request; cookie relies on a server-set session cookie.
// One transport is picked per deployment and never mixed.
const (
	TransportBearer = "bearer"
	TransportCookie = "cookie"
)

type Config struct {
	APIBaseURL string `env:"API_BASE_URL, default=http://localhost:5000"`
	Transport  string `env:"AUTH_TRANSPORT, default=bearer"`
	LogLevel   string `env:"LOG_LEVEL, default=info"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=10s"`

	// CredentialDir holds the persisted credential in bearer mode.
	// Empty means <user home>/.pulseboard.
	CredentialDir string `env:"CREDENTIAL_DIR"`
	// CredentialSealKey is an optional hex-encoded 32-byte key. When set,
	// the persisted credential is sealed at rest.
	CredentialSealKey string `env:"CREDENTIAL_SEAL_KEY"`

	GoogleClientID      string `env:"GOOGLE_CLIENT_ID"`
	FederatedListenAddr string `env:"FEDERATED_LISTEN_ADDR, default=127.0.0.1:0"`

	// NavigateDelay lets a success message render before leaving the form.
	NavigateDelay time.Duration `env:"NAVIGATE_DELAY, default=1200ms"`
}

func Parse() (*Config, error) {
	// .env is optional, real environment wins either way
	_ = godotenv.Load()

	cfg := new(Config)
	if err := envconfig.Process(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("config: failed reading environment, %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if cfg.APIBaseURL == "" {
		return errors.New("config: API base URL is required")
	}
	if cfg.Transport != TransportBearer && cfg.Transport != TransportCookie {
		return fmt.Errorf("config: unknown auth transport `%s`", cfg.Transport)
	}
	return nil
}
