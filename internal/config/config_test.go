package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "s3cr3t")
	t.Setenv("DB_PASSWORD", "pw")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.AppPort)
	assert.Equal(t, "memory", cfg.RateLimitBackend)
	assert.Equal(t, 24*time.Hour, cfg.AuthTokenTTL)
	assert.Equal(t, 30*time.Second, cfg.AITimeout)

	generic, user, ai := cfg.CacheTTLs()
	assert.Equal(t, time.Hour, generic)
	assert.Equal(t, 30*time.Minute, user)
	assert.Equal(t, 2*time.Hour, ai)

	s := cfg.String()
	assert.NotContains(t, s, "s3cr3t")
	assert.NotContains(t, s, "pw\n")
	assert.Contains(t, s, "AuthJWTSecret: ********")
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "x")
	t.Setenv("REDIS_AI_CACHE_TTL", "60")
	t.Setenv("AI_TIMEOUT", "5s")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	_, _, ai := cfg.CacheTTLs()
	assert.Equal(t, time.Minute, ai)
	assert.Equal(t, 5*time.Second, cfg.AITimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadFromEnvValidation(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := LoadFromEnv()
	assert.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "x")
	t.Setenv("RATE_LIMIT_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "")
	_, err = LoadFromEnv()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_BACKEND", "disk")
	_, err = LoadFromEnv()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_BACKEND", "memory")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,not-a-cidr")
	_, err = LoadFromEnv()
	assert.Error(t, err)
}

func TestProxies(t *testing.T) {
	cfg := &Config{TrustedProxies: " 10.1.2.3/8 , ,192.168.0.1,::1"}
	got, err := cfg.Proxies()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.0.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	empty, err := (&Config{}).Proxies()
	require.NoError(t, err)
	assert.Empty(t, empty)
}
