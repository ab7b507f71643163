package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/openrba/stepgate/core"
)

// Config contains the service configuration parameters.
type Config struct {
	Listen   string `env:"LISTEN" envDefault:":9000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// RedisURL selects the session backend; empty means in-memory
	RedisURL string `env:"REDIS_URL"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	Auth Auth `envPrefix:"AUTH_"`
	SMTP SMTP `envPrefix:"SMTP_"`
	RTT  RTT  `envPrefix:"RTT_"`
}

// Auth contains identity provider and policy parameters.
type Auth struct {
	// Regions is a list of "id=auth-url" pairs
	Regions []string `env:"REGIONS" envDefault:"default=http://localhost:5000/v3"`

	DefaultDomain string `env:"DEFAULT_DOMAIN" envDefault:"Default"`

	AllowExpiredPasswordChange bool `env:"ALLOW_EXPIRED_PASSWORD_CHANGE" envDefault:"false"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"devsecret"`
}

// SMTP contains outbound mail parameters. An empty From disables passcode
// delivery.
type SMTP struct {
	Hostname string `env:"HOSTNAME" envDefault:"127.0.0.1"`
	Port     int    `env:"PORT" envDefault:"25"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// RTT contains timing connection parameters.
type RTT struct {
	// IdleTimeout reclaims connections whose client never echoes
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"30s"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Regions parses the configured "id=auth-url" pairs preserving order.
func (c *Config) Regions() ([]core.Region, error) {
	regions := make([]core.Region, 0, len(c.Auth.Regions))

	for _, entry := range c.Auth.Regions {
		id, authURL, ok := strings.Cut(entry, "=")
		if !ok || id == "" || authURL == "" {
			return nil, fmt.Errorf("malformed region entry %q, want id=auth-url", entry)
		}
		regions = append(regions, core.Region{ID: id, AuthURL: authURL})
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions configured")
	}

	return regions, nil
}
