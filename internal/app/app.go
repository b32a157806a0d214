// Package app holds the startup steps shared by the commands.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"jobtracker/internal/config"
	"jobtracker/internal/logger"
	"jobtracker/internal/reminder"
	"jobtracker/internal/storage/redis"
	"jobtracker/internal/storage/sqlstore"
)

// MustConfig loads and validates the configuration and builds the logger,
// exiting the process on failure.
func MustConfig() (*config.Config, *zap.Logger) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	return cfg, log
}

// OpenStore connects to the configured database and applies the schema.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*sqlstore.Store, error) {
	store, err := sqlstore.New(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}

	migrateCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := store.Migrate(migrateCtx); err != nil {
		_ = store.Close()
		return nil, err
	}

	return store, nil
}

// OpenCache returns nil when no Redis address is configured.
func OpenCache(cfg *config.Config, log *zap.Logger) (*redis.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("redis not configured, counts cache and rate limiting disabled")
		return nil, nil
	}
	return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, log)
}

// NewDigest builds the reminder digest with the configured transport.
func NewDigest(cfg *config.Config, store *sqlstore.Store, log *zap.Logger) (*reminder.Digest, error) {
	var notifier reminder.Notifier

	switch cfg.DigestTransport {
	case config.TransportTelegram:
		bot, err := reminder.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			return nil, err
		}
		notifier = reminder.NewTelegramNotifier(bot, log)
	default:
		notifier = reminder.NewMailNotifier(reminder.MailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, log)
	}

	return reminder.New(store, notifier,
		reminder.WithLocation(cfg.Location),
		reminder.WithLogger(log),
	), nil
}
