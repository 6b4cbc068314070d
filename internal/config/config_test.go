package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, env map[string]string) *Config {
	t.Helper()
	for k, val := range env {
		t.Setenv(k, val)
	}
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg, err := decode(v)
	require.NoError(t, err)
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := load(t, nil)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "2025-26", cfg.NBASeason)
	assert.Equal(t, 5, cfg.RecentGames)
	assert.Equal(t, 3, cfg.PropScanGames)
	assert.Equal(t, "draftkings", cfg.PropBookmaker)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, time.Second, cfg.ProviderRetryDelay)
	assert.Equal(t, 2.0, cfg.ProviderRateLimit)
	assert.Equal(t, "sqlite", cfg.CacheBackend)
	assert.Equal(t, "file::memory:?cache=shared", cfg.CacheTarget())
	assert.Equal(t, time.Hour, cfg.GameLogCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.InjuryCacheTTL)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CorsOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestEnvOverrides(t *testing.T) {
	cfg := load(t, map[string]string{
		"ODDS_API_KEY":     "abc",
		"PROP_SCAN_GAMES":  "0",
		"PROVIDER_TIMEOUT": "3s",
		"CACHE_BACKEND":    "redis",
		"REDIS_URL":        "redis://cache:6379/1",
		"CORS_ORIGINS":     "https://a.example, https://b.example,",
		"ENV":              "production",
	})

	assert.Equal(t, "abc", cfg.OddsAPIKey)
	assert.Equal(t, 0, cfg.PropScanGames)
	assert.Equal(t, 3*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "redis://cache:6379/1", cfg.CacheTarget())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.False(t, cfg.IsDevelopment())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := load(t, map[string]string{"ODDS_API_KEY": ""})

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ODDS_API_KEY")

	cfg.OddsAPIKey = "abc"
	cfg.RecentGames = 0
	cfg.CacheBackend = "memcached"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RECENT_GAMES")
	assert.Contains(t, err.Error(), "CACHE_BACKEND")

	cfg.RecentGames = 5
	cfg.CacheBackend = "none"
	assert.NoError(t, cfg.Validate())
}
