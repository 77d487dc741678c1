package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onetriage/leadintake/cmd/mainconfig"
	"github.com/onetriage/leadintake/internal/api/router"
	"github.com/onetriage/leadintake/internal/app/bootstrap"
	appconfig "github.com/onetriage/leadintake/internal/config"
	"github.com/onetriage/leadintake/internal/http/handlers"
	httpmiddleware "github.com/onetriage/leadintake/internal/http/middleware"
	"github.com/onetriage/leadintake/pkg/logging"
)

func main() {
	cfg, err := mainconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting onetriage lead intake API",
		"env", cfg.Env,
		"port", cfg.Port,
		"record_backend", cfg.RecordBackend,
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	reg := prometheus.NewRegistry()
	pipeline, err := bootstrap.BuildPipeline(ctx, cfg, reg, logger)
	if err != nil {
		logger.Error("failed to build lead pipeline", "error", err)
		os.Exit(1)
	}
	defer pipeline.Close()

	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, pipeline, reg, limiter, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newRouter builds the HTTP surface from an already wired pipeline.
func newRouter(cfg *appconfig.Config, p *bootstrap.Pipeline, reg *prometheus.Registry, limiter *httpmiddleware.RateLimiter, logger *logging.Logger) http.Handler {
	leadsHandler := handlers.NewLeadsHandler(handlers.LeadsHandlerConfig{
		Dispatcher:     p.Dispatcher,
		Guard:          p.Guard,
		FallbackEmails: bootstrap.FallbackEmails(cfg),
		Metrics:        p.Metrics,
		Logger:         logger,
	})
	return router.New(&router.Config{
		Logger:             logger,
		LeadsHandler:       leadsHandler,
		HealthHandler:      handlers.NewHealthHandler(p.Health, logger),
		MetricsHandler:     setupMetricsHandler(reg),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:        limiter,
	})
}

// setupMetricsHandler exposes reg together with the Go runtime collectors.
func setupMetricsHandler(reg *prometheus.Registry) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
