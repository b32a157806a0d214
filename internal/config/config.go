package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportEmail    = "email"
	TransportTelegram = "telegram"
)

type Config struct {
	// HTTP
	HTTPAddr           string
	RateLimitPerMinute int

	// Database
	DatabaseDriver string
	DatabaseURL    string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// Time zone used as "local" for presets and reminder dates
	TimeZone string
	Location *time.Location

	// Reminder digest
	DigestEnabled   bool
	DigestAt        string
	DigestTransport string
	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	MailFrom        string
	TelegramToken   string

	// Lead import
	FeedTimeout time.Duration

	// Logging
	LogLevel string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Defaults
		HTTPAddr:           ":8080",
		RateLimitPerMinute: 120,
		DatabaseDriver:     "postgres",
		TimeZone:           "UTC",
		DigestEnabled:      true,
		DigestAt:           "09:00",
		DigestTransport:    TransportEmail,
		SMTPPort:           587,
		MailFrom:           "noreply@jobtracker.local",
		FeedTimeout:        30 * time.Second,
		LogLevel:           "info",
		RedisDB:            0,
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if driver := os.Getenv("DATABASE_DRIVER"); driver != "" {
		cfg.DatabaseDriver = strings.ToLower(driver)
	}

	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		cfg.HTTPAddr = addr
	}

	if limit := os.Getenv("RATE_LIMIT_PER_MINUTE"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
		}
		cfg.RateLimitPerMinute = n
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")

	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		db, err := strconv.Atoi(redisDB)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
		}
		cfg.RedisDB = db
	}

	if tz := os.Getenv("TIME_ZONE"); tz != "" {
		cfg.TimeZone = tz
	}

	if enabled := os.Getenv("DIGEST_ENABLED"); enabled != "" {
		b, err := strconv.ParseBool(enabled)
		if err != nil {
			return nil, fmt.Errorf("invalid DIGEST_ENABLED: %w", err)
		}
		cfg.DigestEnabled = b
	}

	if at := os.Getenv("DIGEST_AT"); at != "" {
		cfg.DigestAt = at
	}

	if transport := os.Getenv("DIGEST_TRANSPORT"); transport != "" {
		cfg.DigestTransport = strings.ToLower(transport)
	}

	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	if port := os.Getenv("SMTP_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = n
	}

	if from := os.Getenv("MAIL_FROM"); from != "" {
		cfg.MailFrom = from
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if timeout := os.Getenv("FEED_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid FEED_TIMEOUT: %w", err)
		}
		cfg.FeedTimeout = d
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	switch c.DatabaseDriver {
	case "postgres", "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.DatabaseDriver)
	}

	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	c.Location = loc

	if c.RateLimitPerMinute < 1 {
		return fmt.Errorf("rate limit per minute must be positive")
	}

	if _, _, err := c.DigestClock(); err != nil {
		return err
	}

	switch c.DigestTransport {
	case TransportEmail:
		if c.DigestEnabled && c.SMTPHost == "" {
			return fmt.Errorf("SMTP host is empty")
		}
	case TransportTelegram:
		if c.TelegramToken == "" {
			return fmt.Errorf("telegram token is empty")
		}
	default:
		return fmt.Errorf("invalid digest transport: %s", c.DigestTransport)
	}

	if c.SMTPPort < 1 || c.SMTPPort > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", c.SMTPPort)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	return nil
}

// DigestClock returns the hour and minute of DigestAt.
func (c *Config) DigestClock() (int, int, error) {
	t, err := time.Parse("15:04", c.DigestAt)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid digest time %q: %w", c.DigestAt, err)
	}
	return t.Hour(), t.Minute(), nil
}
