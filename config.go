package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the server configuration, read from the environment after .env is loaded.
type Config struct {
	Port          string        `env:"PORT" envDefault:"5175"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin  string        `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev_secret_change_me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	DailySalt     string        `env:"DAILY_SALT" envDefault:"local_dev_salt"`
	// CatalogDB, when set, serves games from this SQLite file, seeded from the embedded catalogue.
	CatalogDB string `env:"CATALOG_DB"`
}

func loadConfig() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
