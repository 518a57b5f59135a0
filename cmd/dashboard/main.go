// Command dashboard serves the feedback dashboard.
//
// It serves the built single-page app for every page in the navigation
// table, redirects / to /dashboard, and proxies /api/* to the feedback
// backend with the prefix stripped, so the browser only ever talks to one
// origin. Readiness is the backend's own /health.
//
// Usage:
//
//	go run ./cmd/dashboard [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sentineleye/dashboard/internal/api"
	gwhandler "github.com/sentineleye/dashboard/internal/gateway/handler"
	"github.com/sentineleye/dashboard/internal/gateway/ratelimit"
	"github.com/sentineleye/dashboard/internal/gateway/router"
	"github.com/sentineleye/dashboard/pkg/config"
	"github.com/sentineleye/dashboard/pkg/health"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/metrics"
)

// main loads config, builds the handler + router middleware chain and the
// backend readiness check, and starts the HTTP and metrics servers.
// Graceful shutdown is triggered by SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting dashboard server",
		"port", cfg.Dashboard.Port,
		"backend_url", cfg.Dashboard.BackendURL,
		"static_dir", cfg.Dashboard.StaticDir,
		"environment", cfg.Environment,
	)

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	// The readiness probe talks to the backend directly, not through our
	// own /api proxy.
	backend, err := api.New(cfg.Dashboard.BackendURL, cfg.API.Timeout, api.WithMetrics(m))
	if err != nil {
		slog.Error("invalid backend url", "error", err)
		os.Exit(1)
	}
	checker := health.NewChecker()
	checker.Register("feedback-backend", health.FromError(func(ctx context.Context) error {
		_, err := backend.HealthCheck(ctx)
		return err
	}, false))

	h, err := gwhandler.New(gwhandler.Config{
		BackendURL: cfg.Dashboard.BackendURL,
		StaticDir:  cfg.Dashboard.StaticDir,
	})
	if err != nil {
		slog.Error("failed to build handler", "error", err)
		os.Exit(1)
	}

	limiter := ratelimit.New(time.Minute)
	defer limiter.Close()

	// Sharing the dashboard port mounts /metrics on the main mux instead
	// of running a second listener.
	var scrape http.Handler
	separateMetrics := cfg.Metrics.Enabled && cfg.Metrics.Port != cfg.Dashboard.Port
	if cfg.Metrics.Enabled && !separateMetrics {
		scrape = metrics.Handler(reg)
	}

	chain, err := router.New(h, checker, limiter, m, cfg.Dashboard, scrape)
	if err != nil {
		slog.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Dashboard.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if separateMetrics {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Metrics.Port))
		if err != nil {
			slog.Error("metrics listener", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := metrics.Serve(ctx, ln, reg, cfg.Server.ShutdownTimeout); err != nil {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("dashboard server listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("dashboard server stopped")
}
