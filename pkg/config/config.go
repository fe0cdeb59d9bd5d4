package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "LUTSTORE"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Metrics  MetricsConfig
	DB       DBConfig
	Redis    RedisConfig
	Catalog  CatalogConfig
	Checkout CheckoutConfig
	Gateway  GatewayConfig
}

type AppConfig struct {
	LogLevel     string `envconfig:"LUTSTORE_LOG_LEVEL" default:"info"`
	ExposeErrors bool   `envconfig:"LUTSTORE_EXPOSE_ERRORS" default:"false"`
}

type HTTPConfig struct {
	Port              string        `envconfig:"LUTSTORE_PORT"`
	ReadHeaderTimeout time.Duration `envconfig:"LUTSTORE_HTTP_READ_HEADER_TIMEOUT" default:"5s"`
	ShutdownTimeout   time.Duration `envconfig:"LUTSTORE_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"LUTSTORE_METRICS_ENABLED" default:"true"`
	Token   string `envconfig:"LUTSTORE_METRICS_TOKEN"`
}

type DBConfig struct {
	DSN             string        `envconfig:"LUTSTORE_DB_DSN"`
	MaxOpenConns    int           `envconfig:"LUTSTORE_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"LUTSTORE_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"LUTSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"LUTSTORE_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LUTSTORE_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"LUTSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LUTSTORE_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"LUTSTORE_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type CatalogConfig struct {
	Store         string `envconfig:"LUTSTORE_CATALOG_STORE" default:"memory"`
	Seed          bool   `envconfig:"LUTSTORE_CATALOG_SEED" default:"true"`
	WritesEnabled bool   `envconfig:"LUTSTORE_CATALOG_WRITES_ENABLED" default:"false"`
}

type CheckoutConfig struct {
	Store          string        `envconfig:"LUTSTORE_CHECKOUT_STORE" default:"memory"`
	CatalogURL     string        `envconfig:"LUTSTORE_CATALOG_URL" default:"http://localhost:8082"`
	CatalogTimeout time.Duration `envconfig:"LUTSTORE_CATALOG_TIMEOUT" default:"3s"`
	TaxRate        string        `envconfig:"LUTSTORE_CHECKOUT_TAX_RATE" default:"0.18"`
	Currency       string        `envconfig:"LUTSTORE_CHECKOUT_CURRENCY" default:"USD"`
	IdempotencyTTL time.Duration `envconfig:"LUTSTORE_CHECKOUT_IDEMPOTENCY_TTL" default:"24h"`
}

type GatewayConfig struct {
	CatalogURL        string `envconfig:"LUTSTORE_GATEWAY_CATALOG_URL" default:"http://catalog:8082"`
	CheckoutURL       string `envconfig:"LUTSTORE_GATEWAY_CHECKOUT_URL" default:"http://checkout:8083"`
	CheckoutRateLimit int    `envconfig:"LUTSTORE_GATEWAY_CHECKOUT_RATE_LIMIT" default:"30"`
}

// Load reads an optional .env file and then the LUTSTORE_* environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// missing .env files are fine; real env vars always win
		_ = godotenv.Load(f)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	for name, kind := range map[string]string{"catalog": c.Catalog.Store, "checkout": c.Checkout.Store} {
		switch kind {
		case StoreMemory:
		case StorePostgres:
			if c.DB.DSN == "" {
				return fmt.Errorf("%s store %q requires %s_DB_DSN", name, kind, EnvPrefix)
			}
		default:
			return fmt.Errorf("unknown %s store %q", name, kind)
		}
	}
	return nil
}

// PortOr returns the configured port or def.
func (h HTTPConfig) PortOr(def string) string {
	if h.Port != "" {
		return h.Port
	}
	return def
}
