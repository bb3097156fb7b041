package app

import (
	"errors"
	"os"
	"time"

	"github.com/aussiebroadwan/crm/pkg/envx"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	ErrNoRoutes      = errors.New("GATEWAY_ROUTES must name at least one upstream")
)

// DefaultPublicPaths are reachable without a token.
var DefaultPublicPaths = []string{"/api/auth/login", "/api/auth/validate"}

type Config struct {
	JWTSecret   string   // Required: secret shared with the auth service
	Routes      []string // Required: prefix=url items, e.g. /api/auth=http://auth:8080/auth
	PublicPaths []string // Optional: paths served without a token (default: login and validate)

	UpstreamTimeout time.Duration // Optional: response header timeout for upstreams (default: 30s)

	OTLPEndpoint string // Optional: OTLP/HTTP collector host:port, tracing is off when empty

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8000)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		JWTSecret:   os.Getenv("JWT_SECRET"),
		Routes:      envx.List("GATEWAY_ROUTES", nil),
		PublicPaths: envx.List("GATEWAY_PUBLIC_PATHS", DefaultPublicPaths),

		UpstreamTimeout: envx.DurationOrDefault("GATEWAY_UPSTREAM_TIMEOUT", 30*time.Second),

		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),

		Env:                 envx.GetOrDefault("ENV", "dev"),
		LogLevel:            envx.GetOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envx.GetOrDefault("LOG_FORMAT", "json"),
		Port:                envx.IntOrDefault("PORT", 8000),
		ShutdownGracePeriod: envx.DurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

// Validate rejects configurations the gateway cannot start with. There is no
// dev fallback for the secret.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if len(c.Routes) == 0 {
		return ErrNoRoutes
	}
	return nil
}
