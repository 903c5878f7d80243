package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	HTTPPort       string
	RequestTimeout time.Duration

	DatabaseURL   string // empty selects the in-memory store
	RunMigrations bool

	JWTSecret string

	TelegramToken string // optional; enables the Telegram channel and bot commands

	RedisURL             string // optional; shares the apply rate limit between instances
	ApplyRateLimitPerMin int

	LogLevel    string
	Environment string

	OfferResponseWindow    time.Duration
	InterviewReminderLead  time.Duration
	OfferReminderLead      time.Duration
	CronSpecInterviewCheck string
	CronSpecOfferCheck     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	if cfg.RunMigrations, err = getBool("RUN_MIGRATIONS", true); err != nil {
		return nil, err
	}
	if cfg.ApplyRateLimitPerMin, err = getInt("APPLY_RATE_LIMIT_PER_MIN", 5); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.OfferResponseWindow, err = getDuration("OFFER_RESPONSE_WINDOW", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.InterviewReminderLead, err = getDuration("INTERVIEW_REMINDER_LEAD", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.OfferReminderLead, err = getDuration("OFFER_REMINDER_LEAD", 48*time.Hour); err != nil {
		return nil, err
	}

	cfg.CronSpecInterviewCheck = getEnv("CRON_SPEC_INTERVIEW_REMINDERS", "*/15 * * * *") // every 15 minutes
	cfg.CronSpecOfferCheck = getEnv("CRON_SPEC_OFFER_REMINDERS", "0 9 * * *")            // 9 AM daily

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
