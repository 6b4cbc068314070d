package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"ENV"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// External APIs
	OddsAPIKey       string `mapstructure:"ODDS_API_KEY"`
	RapidAPIKey      string `mapstructure:"RAPIDAPI_KEY"`
	SportsDataAPIKey string `mapstructure:"SPORTSDATA_API_KEY"`

	// Seasons and scan scope
	NBASeason        string `mapstructure:"NBA_SEASON"`
	SportsDataSeason string `mapstructure:"SPORTSDATA_SEASON"`
	RecentGames      int    `mapstructure:"RECENT_GAMES"`
	PropScanGames    int    `mapstructure:"PROP_SCAN_GAMES"`
	PropBookmaker    string `mapstructure:"PROP_BOOKMAKER"`

	// Provider guards
	ProviderTimeout         time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	ProviderMaxRetries      int           `mapstructure:"PROVIDER_MAX_RETRIES"`
	ProviderRetryDelay      time.Duration `mapstructure:"PROVIDER_RETRY_DELAY"`
	ProviderRateLimit       float64       `mapstructure:"PROVIDER_RATE_LIMIT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Response cache
	CacheBackend    string        `mapstructure:"CACHE_BACKEND"` // "sqlite", "redis", "none"
	CacheDSN        string        `mapstructure:"CACHE_DSN"`
	RedisURL        string        `mapstructure:"REDIS_URL"`
	GameLogCacheTTL time.Duration `mapstructure:"GAMELOG_CACHE_TTL"`
	InjuryCacheTTL  time.Duration `mapstructure:"INJURY_CACHE_TTL"`
	MetricsCacheTTL time.Duration `mapstructure:"METRICS_CACHE_TTL"`
}

// LoadConfig reads defaults, an optional .env file, then the environment
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	v.SetDefault("ODDS_API_KEY", "")
	v.SetDefault("RAPIDAPI_KEY", "")
	v.SetDefault("SPORTSDATA_API_KEY", "")

	v.SetDefault("NBA_SEASON", "2025-26")
	v.SetDefault("SPORTSDATA_SEASON", "2026")
	v.SetDefault("RECENT_GAMES", 5)
	v.SetDefault("PROP_SCAN_GAMES", 3) // 0 scans every game on the slate
	v.SetDefault("PROP_BOOKMAKER", "draftkings")

	v.SetDefault("PROVIDER_TIMEOUT", "15s")
	v.SetDefault("PROVIDER_MAX_RETRIES", 2)
	v.SetDefault("PROVIDER_RETRY_DELAY", "1s")
	v.SetDefault("PROVIDER_RATE_LIMIT", 2.0)
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)

	v.SetDefault("CACHE_BACKEND", "sqlite")
	v.SetDefault("CACHE_DSN", "file::memory:?cache=shared")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("GAMELOG_CACHE_TTL", "1h")
	v.SetDefault("INJURY_CACHE_TTL", "10m")
	v.SetDefault("METRICS_CACHE_TTL", "1h")
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	config.CorsOrigins = nil
	for _, origin := range strings.Split(v.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			config.CorsOrigins = append(config.CorsOrigins, origin)
		}
	}

	return &config, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.OddsAPIKey == "" {
		errs = append(errs, errors.New("ODDS_API_KEY is required"))
	}
	if c.RecentGames <= 0 {
		errs = append(errs, fmt.Errorf("RECENT_GAMES must be positive, got %d", c.RecentGames))
	}
	if c.PropScanGames < 0 {
		errs = append(errs, fmt.Errorf("PROP_SCAN_GAMES must not be negative, got %d", c.PropScanGames))
	}
	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %s", c.ProviderTimeout))
	}
	if c.ProviderMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_MAX_RETRIES must not be negative, got %d", c.ProviderMaxRetries))
	}
	switch c.CacheBackend {
	case "sqlite", "redis", "none":
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be sqlite, redis or none, got %q", c.CacheBackend))
	}
	return errors.Join(errs...)
}

// CacheTarget returns the DSN or URL for the selected cache backend
func (c *Config) CacheTarget() string {
	if c.CacheBackend == "redis" {
		return c.RedisURL
	}
	return c.CacheDSN
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
