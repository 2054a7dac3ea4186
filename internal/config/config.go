// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration, populated from environment
// variables via struct tags.
type Config struct {
	DatabaseURL      string        `env:"DATABASE_URL,required"`
	ListenAddr       string        `env:"LISTEN_ADDR" envDefault:":8080"`
	JWTSecret        string        `env:"JWT_SECRET,required"`
	AccessTokenTTL   time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL  time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	PBKDF2Iterations int           `env:"PBKDF2_ITERATIONS" envDefault:"100000"`
	RateLimitRPS     float64       `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst   int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RedisAddr        string        `env:"REDIS_ADDR"`
	SentryDSN        string        `env:"SENTRY_DSN"`
}

// Load parses Config from the current environment, failing fast on a
// missing required variable rather than starting with a zero-value secret.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
