package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openrba/stepgate/core"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 12*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "Default", cfg.Auth.DefaultDomain)
	assert.False(t, cfg.Auth.AllowExpiredPasswordChange)
	assert.Equal(t, 30*time.Second, cfg.Auth.RequestTimeout)
	assert.Equal(t, 30*time.Second, cfg.RTT.IdleTimeout)
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN", ":8080")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("AUTH_REGIONS", "one=https://keystone.one.test/v3,two=https://keystone.two.test/v3")
	t.Setenv("AUTH_ALLOW_EXPIRED_PASSWORD_CHANGE", "true")
	t.Setenv("SMTP_FROM", "noreply@example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.True(t, cfg.Auth.AllowExpiredPasswordChange)
	assert.Equal(t, "noreply@example.com", cfg.SMTP.From)

	regions, err := cfg.Regions()
	require.NoError(t, err)
	assert.Equal(t, []core.Region{
		{ID: "one", AuthURL: "https://keystone.one.test/v3"},
		{ID: "two", AuthURL: "https://keystone.two.test/v3"},
	}, regions)
}

func TestRegionsRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []string
	}{
		{"missing separator", []string{"one"}},
		{"empty id", []string{"=https://keystone.one.test/v3"}},
		{"empty url", []string{"one="}},
		{"none configured", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: Auth{Regions: tt.entries}}

			_, err := cfg.Regions()
			assert.Error(t, err)
		})
	}
}
