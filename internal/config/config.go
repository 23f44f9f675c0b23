// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "PARLEVRAI_"

// AppConfig is the complete server configuration. Every field maps to a
// PARLEVRAI_-prefixed environment variable.
type AppConfig struct {
	Env  string `env:"ENV"  envDefault:"development"`
	Addr string `env:"ADDR" envDefault:":8080"`

	DBPath    string `env:"DB_PATH"    envDefault:"parlevrai.db"`
	StaticDir string `env:"STATIC_DIR" envDefault:"static"`
	// Empty serves the templates compiled into the binary.
	TemplatesDir string `env:"TEMPLATES_DIR"`

	// Seeded only when the account table is empty.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// CSRFKey must be 32 bytes in production.
	CSRFKey string `env:"CSRF_KEY"`

	Email EmailConfig
	Redis RedisConfig `envPrefix:"REDIS_"`
	Geo   GeoConfig   `envPrefix:"GEO_"`

	SlowRequestMS      int    `env:"SLOW_REQUEST_MS"       envDefault:"500"`
	SlowQueryMS        int    `env:"SLOW_QUERY_MS"         envDefault:"50"`
	RateLimitPerSecond int    `env:"RATE_LIMIT_PER_SECOND" envDefault:"10"`
	LogLevel           string `env:"LOG_LEVEL"             envDefault:"info"`
}

// EmailConfig configures signup confirmation delivery.
type EmailConfig struct {
	ResendKey           string `env:"RESEND_KEY"`
	From                string `env:"RESEND_FROM"                envDefault:"ParleVrai15 <bonjour@parlevrai.fr>"`
	BaseURL             string `env:"BASE_URL"                   envDefault:"http://localhost:8080"`
	RequireConfirmation bool   `env:"REQUIRE_EMAIL_CONFIRMATION" envDefault:"false"`
}

// RedisConfig selects the Redis session store. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// GeoConfig enables the visit location lookup. An empty LookupURL sends no
// visitor address to any third party.
type GeoConfig struct {
	LookupURL string `env:"LOOKUP_URL"`
	TimeoutMS int    `env:"TIMEOUT_MS" envDefault:"3000"`
}

// Timeout bounds one location lookup.
func (g GeoConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutMS) * time.Millisecond
}

// Load reads .env when present, then parses the environment.
// POST: returned config has passed Validate
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}
	return Parse(os.Environ())
}

// Parse builds the configuration from KEY=VALUE pairs.
func Parse(environ []string) (AppConfig, error) {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var cfg AppConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: vars}); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate rejects settings that cannot run.
func (c AppConfig) Validate() error {
	if c.IsProduction() && len(c.CSRFKey) != 32 {
		return errors.New("PARLEVRAI_CSRF_KEY must be 32 bytes in production")
	}
	if c.Email.RequireConfirmation && c.Email.BaseURL == "" {
		return errors.New("PARLEVRAI_BASE_URL is required when email confirmation is enabled")
	}
	if c.RateLimitPerSecond <= 0 {
		return errors.New("PARLEVRAI_RATE_LIMIT_PER_SECOND must be positive")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// SlowRequest is the request duration logged as slow.
func (c AppConfig) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}

// SlowQuery is the statement duration logged as slow.
func (c AppConfig) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// Level maps LogLevel to a slog level, defaulting to info.
func (c AppConfig) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// InitLogger installs a JSON slog handler on stdout as the default logger.
func InitLogger(level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
