package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/crm/internal/auth/directory"
	httpapi "github.com/aussiebroadwan/crm/internal/auth/http"
	"github.com/aussiebroadwan/crm/internal/auth/service"
	"github.com/aussiebroadwan/crm/internal/auth/store"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/postgres"
	"github.com/aussiebroadwan/crm/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/crm/pkg/cryptox"
	"github.com/aussiebroadwan/crm/pkg/httpx"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
	"github.com/aussiebroadwan/crm/pkg/tracex"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v1.0.0"
)

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db            store.Store
	codec         *jwtx.Codec
	rdb           *redis.Client // nil without REDIS_URL
	dir           directory.Directory
	traceShutdown func(context.Context) error

	// Services
	loginService     *service.LoginService
	bootstrapService *service.BootstrapService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := httpx.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	// Set pepper for password hashing
	if cfg.Pepper != "" {
		cryptox.SetPepper(cfg.Pepper)
	} else {
		cryptox.SetPepperPath(cfg.PepperFile)
	}

	ctx := context.Background()

	shutdown, err := tracex.Init(ctx, app.logger, tracex.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Service:     "auth-service",
		Version:     BuildVersion,
		Environment: cfg.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.traceShutdown = shutdown

	if err := app.initCodec(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initDirectory(); err != nil {
		return nil, err
	}

	app.initServices()

	if cfg.SeedEnabled {
		seed := service.DefaultSeedData(cfg.SeedAdminPassword, cfg.SeedTestPassword)
		if _, err := app.bootstrapService.Seed(slogx.WithContext(ctx, app.logger), seed); err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
	}

	if err := app.loginService.CalibrateDummyWork(ctx); err != nil {
		return nil, fmt.Errorf("failed to inspect stored password hashes: %w", err)
	}
	if cost := cryptox.LegacyCost(); cost > 0 {
		app.logger.Info("legacy bcrypt hashes present, matching dummy work", "bcrypt_cost", cost)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("auth service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"alg", app.codec.Alg(),
		"token_ttl", app.cfg.TokenTTL.String(),
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.traceShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	if app.rdb != nil {
		if err := app.rdb.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initCodec derives the signing key. In dev a missing secret is replaced by a
// random one, which no other process will share.
func (app *Application) initCodec() error {
	secret := app.cfg.JWTSecret
	if secret == "" {
		generated, err := cryptox.GenerateToken(cryptox.TokenSize512)
		if err != nil {
			return fmt.Errorf("failed to generate dev secret: %w", err)
		}
		secret = generated
		app.logger.Warn("JWT_SECRET not set, using a random secret; tokens will not verify in other services")
	}

	codec, err := jwtx.NewCodec(secret)
	if err != nil {
		return fmt.Errorf("invalid JWT_SECRET: %w", err)
	}
	app.codec = codec
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)
	switch app.cfg.DatabaseDriver {
	case DriverPostgres:
		db, err = postgres.NewStore(app.cfg.DatabaseDSN)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

func (app *Application) initDirectory() error {
	var dir directory.Directory = directory.NewStoreDirectory(app.db)

	if app.cfg.RedisURL != "" {
		rdb, err := directory.NewRedisClient(app.cfg.RedisURL)
		if err != nil {
			return err
		}
		app.rdb = rdb
		dir = directory.NewRedisCache(rdb, dir, app.cfg.DirectoryCacheTTL)
		app.logger.Info("directory cache enabled", "ttl", app.cfg.DirectoryCacheTTL.String())
	}

	app.dir = dir
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Store:         app.db,
		Directory:     app.dir,
		Tokens:        app.codec,
		TTL:           app.cfg.TokenTTL,
		LookupTimeout: app.cfg.LookupTimeout,
	}
	app.bootstrapService = &service.BootstrapService{Store: app.db}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
	)
	router.LoginService = app.loginService
	if app.rdb != nil {
		router.SetCacheCheck(func(ctx context.Context) error {
			return app.rdb.Ping(ctx).Err()
		})
	}
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           tracex.Handler(router, "auth"),
		ReadHeaderTimeout: 3 * time.Second,
	}
}
