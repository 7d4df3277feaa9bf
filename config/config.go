package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/joy095/venue/logger"
)

var loadOnce sync.Once

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET not set")

// LoadEnv loads variables from .env once; real environment variables win.
func LoadEnv() {
	loadOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			logger.WarnLogger.Warn(".env file not found, reading from system environment variables")
		}
	})
}

// AppConfig is the runtime configuration read from the environment.
type AppConfig struct {
	Port              string
	DatabaseURL       string
	RedisURL          string
	NatsURL           string
	JWTSecret         string
	Location          *time.Location
	PendingExpirySpec string
	VenueLockTTL      time.Duration
	AutoMigrate       bool
	BadWordsFile      string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
}

// Load reads AppConfig from the environment. APP_TIMEZONE selects the single zone
// every booking date/time is interpreted in; it defaults to the server's local zone.
func Load() (*AppConfig, error) {
	LoadEnv()

	cfg := &AppConfig{
		Port:              getEnv("PORT", "8081"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		NatsURL:           os.Getenv("NATS_URL"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		PendingExpirySpec: getEnv("PENDING_EXPIRY_SPEC", "@every 15m"),
		BadWordsFile:      os.Getenv("BADWORDS_FILE"),
		SMTPHost:          os.Getenv("SMTP_HOST"),
		SMTPUsername:      os.Getenv("SMTP_USERNAME"),
		SMTPPassword:      os.Getenv("SMTP_PASSWORD"),
		FromEmail:         os.Getenv("FROM_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	loc, err := LoadLocation(os.Getenv("APP_TIMEZONE"))
	if err != nil {
		return nil, err
	}
	cfg.Location = loc

	ttl, err := time.ParseDuration(getEnv("VENUE_LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid VENUE_LOCK_TTL: %w", err)
	}
	cfg.VenueLockTTL = ttl

	if v := os.Getenv("AUTO_MIGRATE"); v != "" {
		auto, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
		}
		cfg.AutoMigrate = auto
	}

	if p := os.Getenv("SMTP_PORT"); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
		}
		cfg.SMTPPort = port
	}

	return cfg, nil
}

// LoadLocation resolves a zone name; empty or "Local" means the server's zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", name, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
