package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// InsecureSessionSecret is the local-development default for SESSION_SECRET.
// It is refused when ENV=production.
const InsecureSessionSecret = "our-secret-key"

const (
	EnvProduction = "production"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Port          string `env:"PORT,           default=3000"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	SessionSecret string `env:"SESSION_SECRET, default=our-secret-key"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Auth    AuthConfig
	Audit   AuditConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGODB_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGODB_DB,      default=myapp"`
	Timeout  time.Duration `env:"MONGODB_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	Store        string        `env:"SESSION_STORE,         default=redis"`
	TTL          time.Duration `env:"SESSION_TTL,           default=24h"`
	Sliding      bool          `env:"SESSION_SLIDING,       default=false"`
	CookieName   string        `env:"SESSION_COOKIE_NAME,   default=sid"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE, default=false"`
}

type AuthConfig struct {
	RateLimit float64 `env:"AUTH_RATE_LIMIT, default=5"`
	RateBurst int     `env:"AUTH_RATE_BURST, default=10"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Validate rejects settings that must never reach production.
func (c *Config) Validate() error {
	if c.Session.Store != SessionStoreMemory && c.Session.Store != SessionStoreRedis {
		return fmt.Errorf("SESSION_STORE must be %q or %q, got %q", SessionStoreMemory, SessionStoreRedis, c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must not be empty")
	}
	if c.IsProduction() && c.SessionSecret == InsecureSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	return nil
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
