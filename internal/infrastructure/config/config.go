package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	// Workers is the number of dispatcher shards.
	Workers      int           `env:"WORKERS,               default=8"`
	PollInterval time.Duration `env:"POLL_INTERVAL,         default=0s"`
	PollLimit    int           `env:"POLL_LIMIT,            default=400"`
	PatternsFile string        `env:"CUSTOMS_PATTERNS_FILE"`

	// Bootstrap admin, created at startup when both are set and the
	// username is free.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Mongo    MongoConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Provider ProviderConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=customs_tracking"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,        default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,          default=0"`
	DedupTTL time.Duration `env:"DEDUP_TTL,         default=1h"`
	CacheTTL time.Duration `env:"SUMMARY_CACHE_TTL, default=5m"`
}

// NATSConfig is optional: an empty URL disables summary change events.
type NATSConfig struct {
	URL     string `env:"NATS_URL"`
	Subject string `env:"NATS_SUBJECT, default=customs.summary.updated"`
}

type ProviderConfig struct {
	APIKey  string        `env:"TRACK17_API_KEY"`
	BaseURL string        `env:"TRACK17_BASE_URL, default=https://api.17track.net/track/v2.2"`
	Rate    float64       `env:"TRACK17_RATE,     default=3"`
	Timeout time.Duration `env:"TRACK17_TIMEOUT,  default=20s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through l; tests pass a map lookuper.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

func (c *Config) validate() error {
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required in production")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: WORKERS must be positive, got %d", c.Workers)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("config: POLL_INTERVAL must not be negative")
	}
	if c.Provider.Rate <= 0 {
		return fmt.Errorf("config: TRACK17_RATE must be positive")
	}
	return nil
}
