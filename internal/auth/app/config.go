package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/directory"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/pkg/envx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrMissingSecret = errors.New("JWT_SECRET is required outside dev")

type Config struct {
	JWTSecret     string        // Required outside dev: secret shared with every verifying service
	TokenTTL      time.Duration // Optional: token lifetime (default: 24h)
	LookupTimeout time.Duration // Optional: bound on user store lookups during login (default: 3s)

	DatabaseDriver string // Optional: sqlite or postgres (default: sqlite)
	DatabaseFile   string // Optional: path to SQLite database file (default: ./auth.db)
	DatabaseDSN    string // Required for postgres: connection string
	PepperFile     string // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Pepper         string // Optional: pepper value, overrides PepperFile

	RedisURL          string        // Optional: enables the directory name cache
	DirectoryCacheTTL time.Duration // Optional: directory cache TTL (default: 10m)

	SeedEnabled       bool   // Optional: create default directory and accounts (default: true)
	SeedAdminPassword string // Optional: generated when empty (dev default: admin123)
	SeedTestPassword  string // Optional: generated when empty (dev default: test123)

	OTLPEndpoint string // Optional: OTLP/HTTP collector host:port, tracing is off when empty

	TrustedProxies []string // Optional: proxy addresses/CIDRs whose X-Forwarded-For is believed (the gateway)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	env := envx.GetOrDefault("ENV", "dev")

	cfg := Config{
		JWTSecret:     os.Getenv("JWT_SECRET"),
		TokenTTL:      envx.DurationOrDefault("JWT_TTL", jwtx.DefaultTokenTTL),
		LookupTimeout: envx.DurationOrDefault("LOOKUP_TIMEOUT", service.DefaultLookupTimeout),

		DatabaseDriver: envx.GetOrDefault("AUTH_DATABASE_DRIVER", DriverSQLite),
		DatabaseFile:   envx.GetOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		DatabaseDSN:    os.Getenv("AUTH_DATABASE_DSN"),
		PepperFile:     envx.GetOrDefault("AUTH_PEPPER_FILE", "pepper"),
		Pepper:         os.Getenv("AUTH_PEPPER"),

		RedisURL:          os.Getenv("REDIS_URL"),
		DirectoryCacheTTL: envx.DurationOrDefault("DIRECTORY_CACHE_TTL", directory.DefaultCacheTTL),

		SeedEnabled:       envx.BoolOrDefault("SEED_ENABLED", true),
		SeedAdminPassword: os.Getenv("SEED_ADMIN_PASSWORD"),
		SeedTestPassword:  os.Getenv("SEED_TEST_PASSWORD"),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		TrustedProxies: envx.List("TRUSTED_PROXIES", nil),

		Env:                 env,
		LogLevel:            envx.GetOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envx.GetOrDefault("LOG_FORMAT", "json"),
		Port:                envx.IntOrDefault("PORT", 8080),
		ShutdownGracePeriod: envx.DurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	// The well known development accounts.
	if env == "dev" {
		if cfg.SeedAdminPassword == "" {
			cfg.SeedAdminPassword = "admin123"
		}
		if cfg.SeedTestPassword == "" {
			cfg.SeedTestPassword = "test123"
		}
	}

	return cfg
}

// Validate rejects configurations the service cannot start with. A missing
// secret is only tolerated in dev, where New generates a throwaway one.
func (c Config) Validate() error {
	if c.JWTSecret == "" && c.Env != "dev" {
		return ErrMissingSecret
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.TokenTTL)
	}
	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseDSN == "" {
			return errors.New("AUTH_DATABASE_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown AUTH_DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}
