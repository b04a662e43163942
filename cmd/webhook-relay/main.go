package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"webhook-relay/internal/client"
	"webhook-relay/internal/config"
	"webhook-relay/internal/handler"
	"webhook-relay/internal/metrics"
	"webhook-relay/internal/middleware"
	"webhook-relay/internal/service"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// .env must be in the environment before Kong resolves env bindings.
	if err := config.LoadEnvFile(config.EnvFilePath(os.Getenv)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cli config.CLI
	kong.Parse(&cli,
		kong.Name("webhook-relay"),
		kong.Description("Relays LINE webhook callbacks to an n8n webhook endpoint."),
		kong.Vars{"version": fmt.Sprintf("%s (%s, %s)", version, commit, date)},
	)

	fx.New(appOptions(&cli)).Run()
}

// appOptions assembles the dependency graph. Configuration errors surface
// from config.Load before any lifecycle hook runs, so a misconfigured relay
// never binds its listener.
func appOptions(cli *config.CLI) fx.Option {
	return fx.Options(
		fx.Provide(
			func() *config.CLI { return cli },
			func() handler.Version { return handler.Version(version) },
			config.Load,
			newLogger,
			metrics.New,
			newEcho,
			client.NewDestinationClient,
			service.NewRelayService,
			handler.NewCallbackHandler,
			handler.NewHealthHandler,
		),
		fx.Invoke(handler.RegisterRoutes, registerMetrics, warnConfig, startServer),
	)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		h = slog.NewTextHandler(os.Stdout, opts)
	default:
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(h)
}

func newEcho(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = 30 * time.Second
	// The acknowledgment is written only after the forwarding attempt
	// resolves, so leave room for the destination timeout.
	e.Server.WriteTimeout = time.Duration(cfg.Destination.TimeoutSeconds)*time.Second + 10*time.Second
	e.Server.IdleTimeout = 120 * time.Second
	e.Server.ReadHeaderTimeout = 10 * time.Second

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger, "/callback", "/healthz"))
	e.Use(middleware.SecurityHeaders())
	if cfg.Metrics.Enabled {
		e.Use(middleware.MetricsMiddleware(m))
	}

	return e
}

func registerMetrics(e *echo.Echo, cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) {
	if !cfg.Metrics.Enabled {
		return
	}
	handler.RegisterMetrics(e, cfg.Metrics.Path, promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	logger.Info("metrics enabled", "path", cfg.Metrics.Path)
}

func warnConfig(cfg *config.Config, logger *slog.Logger) {
	cfg.WarnPermissions(logger)
	cfg.WarnMissingToken(logger)
}

func startServer(lc fx.Lifecycle, e *echo.Echo, cfg *config.Config, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			addr := cfg.Server.Addr()
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("bind %s: %w", addr, err)
			}
			logger.Info("starting server",
				"addr", addr,
				"destination_host", cfg.Destination.DestinationHost(),
				"version", version,
			)
			go func() {
				if err := e.Server.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("server error", "err", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down server")
			return e.Shutdown(ctx)
		},
	})
}
