package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	ServerPort        string  `mapstructure:"SERVER_PORT"`
	PostgresURL       string  `mapstructure:"POSTGRES_URL"`
	RedisAddr         string  `mapstructure:"REDIS_ADDR"`
	Workers           int     `mapstructure:"WORKERS"`
	FetchTimeout      int     `mapstructure:"FETCH_TIMEOUT"`
	MaxBodyBytes      int64   `mapstructure:"MAX_BODY_BYTES"`
	RequestsPerSecond float64 `mapstructure:"REQUESTS_PER_SECOND"`
	SearchLimit       int     `mapstructure:"SEARCH_LIMIT"`
	DedupTTLHours     int     `mapstructure:"DEDUP_TTL_HOURS"`
	OutputPath        string  `mapstructure:"OUTPUT_PATH"`
	OutputFormat      string  `mapstructure:"OUTPUT_FORMAT"`
	UserAgent         string  `mapstructure:"USER_AGENT"`
	Proxies           string  `mapstructure:"PROXIES"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present.
	// This allows configuration purely through environment variables.
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("WORKERS", 10)
	viper.SetDefault("FETCH_TIMEOUT", 20) // in seconds
	viper.SetDefault("MAX_BODY_BYTES", 2*1024*1024)
	viper.SetDefault("REQUESTS_PER_SECOND", 0) // 0 = unlimited
	viper.SetDefault("SEARCH_LIMIT", 30)
	viper.SetDefault("DEDUP_TTL_HOURS", 48)
	viper.SetDefault("OUTPUT_PATH", "emails.csv")
	viper.SetDefault("OUTPUT_FORMAT", "csv")
	viper.SetDefault("USER_AGENT", "")
	viper.SetDefault("PROXIES", "")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchTimeoutDuration returns the per-fetch timeout as a Duration.
func (c *Config) FetchTimeoutDuration() time.Duration {
	return time.Duration(c.FetchTimeout) * time.Second
}

// DedupTTL returns how long a homepage stays marked as processed in the
// Redis-backed visited store.
func (c *Config) DedupTTL() time.Duration {
	return time.Duration(c.DedupTTLHours) * time.Hour
}

// ProxyList splits the comma-separated PROXIES value into proxy URLs.
func (c *Config) ProxyList() []string {
	if c.Proxies == "" {
		return nil
	}
	parts := strings.Split(c.Proxies, ",")
	proxies := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
