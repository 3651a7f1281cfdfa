// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database drivers accepted in LOVEJAR_DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string

	DBDriver    string
	DBPath      string
	DatabaseURL string

	SessionSecret          []byte
	SessionSecretGenerated bool
	SessionTTL             time.Duration
	SecureCookies          bool

	GeminiAPIKey string
	GeminiModel  string
	IdeasRPS     float64

	GoogleClientID string

	RedisAddr     string
	RedisPassword string

	Location *time.Location
}

// HasGenerator reports whether an idea generator API key is configured.
func (c *Config) HasGenerator() bool { return c.GeminiAPIKey != "" }

// HasFederation reports whether Google sign-in is configured.
func (c *Config) HasFederation() bool { return c.GoogleClientID != "" }

// HasRedis reports whether partner events should be published to Redis.
func (c *Config) HasRedis() bool { return c.RedisAddr != "" }

// LoadDotEnv loads variables from the given files (default ".env") without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and returns a validated Config.
// Everything is optional. Defaults: LOVEJAR_LISTEN_ADDR (127.0.0.1:8080),
// LOVEJAR_DB_DRIVER (sqlite), LOVEJAR_DB_PATH (lovejar.db), LOVEJAR_SESSION_TTL (24h),
// LOVEJAR_GEMINI_MODEL (gemini-2.5-flash), LOVEJAR_IDEAS_RPS (1), LOVEJAR_TIMEZONE (UTC).
// LOVEJAR_DATABASE_URL is required when the driver is postgres. Without
// LOVEJAR_SESSION_SECRET a random secret is generated, so sessions do not
// survive a restart.
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:     envOr("LOVEJAR_LISTEN_ADDR", "127.0.0.1:8080"),
		DBDriver:       envOr("LOVEJAR_DB_DRIVER", DriverSQLite),
		DBPath:         envOr("LOVEJAR_DB_PATH", "lovejar.db"),
		DatabaseURL:    os.Getenv("LOVEJAR_DATABASE_URL"),
		SessionTTL:     24 * time.Hour,
		GeminiAPIKey:   os.Getenv("LOVEJAR_GEMINI_API_KEY"),
		GeminiModel:    envOr("LOVEJAR_GEMINI_MODEL", "gemini-2.5-flash"),
		IdeasRPS:       1,
		GoogleClientID: os.Getenv("LOVEJAR_GOOGLE_CLIENT_ID"),
		RedisAddr:      os.Getenv("LOVEJAR_REDIS_ADDR"),
		RedisPassword:  os.Getenv("LOVEJAR_REDIS_PASSWORD"),
		Location:       time.UTC,
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("LOVEJAR_DATABASE_URL is required when LOVEJAR_DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("LOVEJAR_DB_DRIVER has unsupported value %q (want sqlite or postgres)", cfg.DBDriver)
	}

	if v, ok := os.LookupEnv("LOVEJAR_SESSION_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("LOVEJAR_SESSION_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("LOVEJAR_SESSION_TTL must be positive, got %s", parsed)
		}
		cfg.SessionTTL = parsed
	}

	if v, ok := os.LookupEnv("LOVEJAR_IDEAS_RPS"); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("LOVEJAR_IDEAS_RPS must be a positive number, got %q", v)
		}
		cfg.IdeasRPS = parsed
	}

	if v, ok := os.LookupEnv("LOVEJAR_SECURE_COOKIES"); ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LOVEJAR_SECURE_COOKIES has invalid boolean %q: %w", v, err)
		}
		cfg.SecureCookies = parsed
	}

	if v, ok := os.LookupEnv("LOVEJAR_TIMEZONE"); ok && v != "" {
		loc, err := time.LoadLocation(v)
		if err != nil {
			return nil, fmt.Errorf("LOVEJAR_TIMEZONE has invalid zone %q: %w", v, err)
		}
		cfg.Location = loc
	}

	if v := os.Getenv("LOVEJAR_SESSION_SECRET"); v != "" {
		cfg.SessionSecret = []byte(v)
	} else {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.SessionSecretGenerated = true
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
