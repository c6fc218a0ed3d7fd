package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver string `env:"DB_DRIVER" envDefault:"mysql"`
	DSN      string `env:"DB_DSN"`

	JWTSecret   string `env:"JWT_SECRET" envDefault:"dev-secret-only"`
	AppPort     string `env:"APP_PORT" envDefault:"8080"`
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Lifetime of anti-forgery tokens handed to forms and dropdown scripts.
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`

	AdminNoticeURL string `env:"ADMIN_NOTICE_URL" envDefault:"/admin/org-structure"`
	MyAccountURL   string `env:"MY_ACCOUNT_URL" envDefault:"/my-account"`

	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin12345"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.DSN == "" {
		return Config{}, errors.New("DB_DSN not set in environment")
	}
	switch cfg.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return Config{}, errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	return cfg, nil
}
