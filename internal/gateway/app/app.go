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

	gatewayhttp "github.com/aussiebroadwan/crm/internal/gateway/http"
	"github.com/aussiebroadwan/crm/pkg/jwtx"
	"github.com/aussiebroadwan/crm/pkg/slogx"
	"github.com/aussiebroadwan/crm/pkg/tracex"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v1.0.0"
)

// Application is the gateway process: one verifier in front of every CRM
// service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	codec         *jwtx.Codec
	routes        []gatewayhttp.Route
	traceShutdown func(context.Context) error

	server *http.Server
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := jwtx.NewCodec(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_SECRET: %w", err)
	}
	app.codec = codec

	routes, err := gatewayhttp.ParseRoutes(cfg.Routes)
	if err != nil {
		return nil, err
	}
	app.routes = routes

	shutdown, err := tracex.Init(context.Background(), app.logger, tracex.Config{
		Endpoint:    cfg.OTLPEndpoint,
		Service:     "gateway",
		Version:     BuildVersion,
		Environment: cfg.Env,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.traceShutdown = shutdown

	app.initHTTP()
	return app, nil
}

func (app *Application) initHTTP() {
	base := http.DefaultTransport.(*http.Transport).Clone()
	base.ResponseHeaderTimeout = app.cfg.UpstreamTimeout
	transport := tracex.Transport(base)

	gw := gatewayhttp.NewGateway(app.routes, app.cfg.PublicPaths, app.codec, transport)
	router := gatewayhttp.NewRouter(gw, app.routes, transport, BuildVersion, app.logger)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           tracex.Handler(router, "gateway"),
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Run starts the gateway and blocks until shutdown is requested
func (app *Application) Run() error {
	for _, rt := range app.routes {
		app.logger.Info("route", "prefix", rt.Prefix, "target", rt.Target.String())
	}
	app.logger.Info("gateway starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"alg", app.codec.Alg(),
		"public_paths", app.cfg.PublicPaths,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.traceShutdown(ctx); err != nil {
		app.logger.Error("error flushing traces", "error", err)
	}

	app.logger.Info("gateway stopped")
	return nil
}
