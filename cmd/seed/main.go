package main

import (
	"context"
	"os"

	"jobtracker/internal/app"
	"jobtracker/internal/service"

	"go.uber.org/zap"
)

// seed creates or refreshes the end-to-end test account.
func main() {
	cfg, log := app.MustConfig()
	defer log.Sync()

	username := envOr("E2E_USERNAME", "e2e")
	password := envOr("E2E_PASSWORD", "e2e-pass")
	email := envOr("E2E_EMAIL", username+"@example.com")

	ctx := context.Background()

	store, err := app.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	svc := service.New(store, service.WithLocation(cfg.Location), service.WithLogger(log))

	result, err := svc.SeedDemoUser(ctx, username, password, email)
	if err != nil {
		log.Fatal("failed to seed demo user", zap.Error(err))
	}

	log.Info("demo user ready",
		zap.String("username", result.User.Username),
		zap.Bool("created", result.Created),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
