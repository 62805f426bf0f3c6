package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type StorageKind string

const (
	StorageSQLite   StorageKind = "sqlite"
	StorageMemory   StorageKind = "memory"
	StorageRedis    StorageKind = "redis"
	StoragePostgres StorageKind = "postgres"
)

type Config struct {
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8081"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Storage    StorageKind `env:"CART_STORAGE" envDefault:"sqlite"`
	StorageKey string      `env:"CART_STORAGE_KEY" envDefault:"hsrp_cart"`
	SQLitePath string      `env:"CART_SQLITE_PATH" envDefault:"storefront-cart.db"`
	RedisAddr  string      `env:"REDIS_ADDR"`
	DBDSN      string      `env:"CART_DB_DSN"`
	// RunMigrations applies to the postgres backend; sqlite always migrates on open.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"true"`

	RabbitMQURL string `env:"RABBITMQ_URL"`
	CartID      string `env:"CART_ID"`

	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`
	RenderToLog      bool     `env:"CART_RENDER_LOG" envDefault:"false"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage = StorageKind(strings.ToLower(strings.TrimSpace(string(cfg.Storage))))
	cfg.CORSAllowOrigins = trimAll(cfg.CORSAllowOrigins)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("CART_SQLITE_PATH is required for sqlite storage")
		}
	case StorageMemory:
	case StorageRedis:
		if strings.TrimSpace(c.RedisAddr) == "" {
			return fmt.Errorf("REDIS_ADDR is required for redis storage")
		}
	case StoragePostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("CART_DB_DSN is required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown CART_STORAGE %q (want sqlite, memory, redis or postgres)", c.Storage)
	}
	if strings.TrimSpace(c.StorageKey) == "" {
		return fmt.Errorf("CART_STORAGE_KEY must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
