package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const devSecret = "local_dev_secret"

// Load reads the App configuration from the environment.
func Load() (App, error) {
	cfg := App{
		Port:        getenv("APP_PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Env:         getenv("APP_ENV", "dev"),
		RedisURL:    os.Getenv("REDIS_URL"),
		AMQPURL:     os.Getenv("AMQP_URL"),

		ManagerUsername: os.Getenv("MANAGER_USERNAME"),
		ManagerEmail:    os.Getenv("MANAGER_EMAIL"),
		ManagerPassword: os.Getenv("MANAGER_PASSWORD"),
	}

	if cfg.DatabaseURL == "" {
		return App{}, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return App{}, fmt.Errorf("JWT_SECRET environment variable is required")
		}
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devSecret
	}

	var err error
	if cfg.TokenTTL, err = duration("TOKEN_TTL", 6*time.Hour); err != nil {
		return App{}, err
	}
	if cfg.CatalogCacheTTL, err = duration("CATALOG_CACHE_TTL", 30*time.Second); err != nil {
		return App{}, err
	}
	if cfg.AutoMigrate, err = boolean("AUTO_MIGRATE"); err != nil {
		return App{}, err
	}
	if cfg.SeedCatalog, err = boolean("SEED_CATALOG"); err != nil {
		return App{}, err
	}
	if cfg.ManagerUsername != "" && (cfg.ManagerPassword == "" || cfg.ManagerEmail == "") {
		return App{}, fmt.Errorf("MANAGER_EMAIL and MANAGER_PASSWORD are required with MANAGER_USERNAME")
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", k)
	}
	return d, nil
}

func boolean(k string) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}
