package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the scoreboard server.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	ServerPort  int    `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	WriteBackDebounce time.Duration `env:"WRITEBACK_DEBOUNCE" envDefault:"500ms"`
	PersistTimeout    time.Duration `env:"PERSIST_TIMEOUT" envDefault:"5s"`
	SeedPolicy        string        `env:"CHAMPIONSHIP_SEED_POLICY" envDefault:"live"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	TournamentDays     []string `env:"TOURNAMENT_DAYS" envSeparator:","`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2BucketName      string `env:"R2_BUCKET_NAME"`
	R2PublicBaseURL   string `env:"R2_PUBLIC_BASE_URL"`
	R2KeyPrefix       string `env:"R2_KEY_PREFIX"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.WriteBackDebounce <= 0 {
		return nil, fmt.Errorf("WRITEBACK_DEBOUNCE must be positive, got %v", cfg.WriteBackDebounce)
	}
	if cfg.PersistTimeout <= 0 {
		return nil, fmt.Errorf("PERSIST_TIMEOUT must be positive, got %v", cfg.PersistTimeout)
	}
	return cfg, nil
}

// ExportEnabled reports whether every R2 setting is present.
func (c *Config) ExportEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}
