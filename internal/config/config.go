package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string        `env:"SERVER_PORT" envDefault:"8080"`
	MySQLDSN    string        `env:"MYSQL_DSN" envDefault:"user:password@tcp(localhost:3306)/eventboard?charset=utf8mb4&parseTime=True&loc=UTC"`
	RedisAddr   string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB     int           `env:"REDIS_DB" envDefault:"0"`
	RedisPass   string        `env:"REDIS_PASSWORD"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"change-me"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	SwaggerHost string        `env:"SWAGGER_HOST"`
	ResetDB     bool          `env:"RESET_DB" envDefault:"false"`

	Logging LoggingConfig
	Admin   AdminSeed
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// AdminSeed describes the bootstrap admin account created by cmd/seed.
type AdminSeed struct {
	Name     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// Load builds Config from environment with sensible defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &cfg, nil
}
