package config

import "time"

type App struct {
	Port            string        `env:"APP_PORT" default:"8080"`
	DatabaseURL     string        `env:"DATABASE_URL,required"`
	JWTSecret       string        `env:"JWT_SECRET,required"`
	TokenTTL        time.Duration `env:"TOKEN_TTL" default:"6h"`
	Env             string        `env:"APP_ENV" default:"dev"`
	AutoMigrate     bool          `env:"AUTO_MIGRATE" default:"false"`
	RedisURL        string        `env:"REDIS_URL"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" default:"30s"`
	AMQPURL         string        `env:"AMQP_URL"`
	SeedCatalog     bool          `env:"SEED_CATALOG" default:"false"`

	// Bootstrap manager, upserted at startup when ManagerUsername is set.
	ManagerUsername string `env:"MANAGER_USERNAME"`
	ManagerEmail    string `env:"MANAGER_EMAIL"`
	ManagerPassword string `env:"MANAGER_PASSWORD"`
}

func (a App) IsDev() bool { return a.Env == "dev" }
