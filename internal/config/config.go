package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/storyweave/storyweave-api/internal/crypto"
)

type Config struct {
	Port        string
	Env         string
	DatabaseDSN string

	JWTSecret string
	JWTExpiry time.Duration

	RateLimitAttempts int
	RateLimitWindow   time.Duration

	DefaultProvider string
	ProvidersFile   string
}

// Load reads configuration from the environment. Outside production a
// missing JWT_SECRET is replaced with a random per-process secret;
// production refuses to start without one.
func Load() Config {
	cfg := Config{
		Port:              getEnv("PORT", "8080"),
		Env:               getEnv("ENV", "development"),
		DatabaseDSN:       getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/storyweave?parseTime=true"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		JWTExpiry:         getDuration("JWT_EXPIRY", 24*time.Hour),
		RateLimitAttempts: getInt("AUTH_RATE_LIMIT", 10),
		RateLimitWindow:   getDuration("AUTH_RATE_WINDOW", time.Minute),
		DefaultProvider:   getEnv("DEFAULT_AI_PROVIDER", "gemini"),
		ProvidersFile:     getEnv("PROVIDERS_FILE", ""),
	}

	if cfg.JWTSecret == "" {
		if cfg.Env == "production" {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}
		secret, err := crypto.GenerateSecret(32)
		if err != nil {
			slog.Error("failed to generate development JWT secret", "error", err)
			os.Exit(1)
		}
		slog.Warn("JWT_SECRET not set, generated a per-process secret; tokens will not survive restarts")
		cfg.JWTSecret = secret
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", v)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", v)
		return fallback
	}
	return d
}
