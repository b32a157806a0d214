package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"jobtracker/internal/app"

	"go.uber.org/zap"
)

// digest sends one reminder pass and exits, for use from cron.
func main() {
	cfg, log := app.MustConfig()
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	digest, err := app.NewDigest(cfg, store, log)
	if err != nil {
		log.Fatal("failed to create reminder digest", zap.Error(err))
	}

	report, err := digest.Run(ctx)
	if err != nil {
		log.Fatal("reminder digest failed", zap.Error(err))
	}

	if report.Failed > 0 {
		log.Warn("some reminders were not delivered", zap.Int("failed", report.Failed))
		os.Exit(2)
	}
}
