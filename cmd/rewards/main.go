package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rewards/internal/backend"
	"rewards/internal/cli"
	apphttp "rewards/internal/http"
	applog "rewards/internal/log"
	"rewards/internal/services"
)

// invalidator is implemented by sources that keep their own snapshot.
type invalidator interface {
	Invalidate()
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	be, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, backendCfg.Type)
		os.Exit(1)
	}
	defer be.Close()

	rewards := services.NewRewardService(be.Source, cfg.BatchWorkers)
	srv := apphttp.NewServer(apphttp.Options{
		Addr:               cfg.Address(),
		Rewards:            rewards,
		Readiness:          be,
		Logger:             logger,
		CacheSize:          cfg.CacheSize,
		CacheTTL:           cfg.CacheTTL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	srv.MaxHeaderBytes = 1 << 16

	// SIGHUP drops cached summaries so freshly imported data shows up
	// before CACHE_TTL runs out.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if inv, ok := be.Source.(invalidator); ok {
				inv.Invalidate()
			}
			srv.InvalidateCache()
		}
	}()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		signal.Stop(hup)
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting rewards server", "addr", srv.Addr, applog.FieldBackend, be.Type)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "addr", srv.Addr)
		be.Close()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
