package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobtracker/internal/api"
	"jobtracker/internal/app"
	"jobtracker/internal/reminder"
	"jobtracker/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, log := app.MustConfig()
	defer log.Sync()

	log.Info("starting job tracker",
		zap.String("log_level", cfg.LogLevel),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("driver", cfg.DatabaseDriver),
		zap.String("time_zone", cfg.Location.String()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	cache, err := app.OpenCache(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to Redis", zap.Error(err))
	}

	svcOpts := []service.Option{
		service.WithLocation(cfg.Location),
		service.WithLogger(log),
	}
	apiOpts := []api.Option{api.WithLogger(log)}
	if cache != nil {
		defer cache.Close()
		svcOpts = append(svcOpts, service.WithCountsCache(cache))
		apiOpts = append(apiOpts, api.WithRateLimiter(cache, cfg.RateLimitPerMinute))
	}

	svc := service.New(store, svcOpts...)
	server := api.New(svc, apiOpts...)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.DigestEnabled {
		digest, err := app.NewDigest(cfg, store, log)
		if err != nil {
			log.Fatal("failed to create reminder digest", zap.Error(err))
		}

		hour, minute, _ := cfg.DigestClock()
		scheduler := reminder.NewScheduler(digest, hour, minute, cfg.Location, log)
		go scheduler.Start(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errChan:
		log.Error("http server stopped with error", zap.Error(err))
		cancel()
	}

	log.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}

	log.Info("job tracker stopped")
}
