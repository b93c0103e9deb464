// Package config handles loading application configuration from environment
// variables. All settings have sensible defaults for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application settings loaded from environment variables.
type Config struct {
	Port                string
	DatabasePath        string
	JWTSecret           string
	SessionDuration     time.Duration
	SpotifyClientID     string
	SpotifyClientSecret string
	SpotifyRedirectURL  string
	RateLimitPerMinute  int
	CORSAllowedOrigins  []string
	TrustedProxies      []string
	SentryDSN           string
	SentryEnvironment   string
}

// Load reads configuration from environment variables, using defaults where
// not set.
func Load() *Config {
	return &Config{
		Port:                getEnv("PORT", "8080"),
		DatabasePath:        getEnv("DATABASE_PATH", "./tunecircle.db"),
		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"), // #nosec G101 -- intentional dev default
		SessionDuration:     getDurationEnv("SESSION_DURATION", 7*24*time.Hour),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		SpotifyRedirectURL:  getEnv("SPOTIFY_REDIRECT_URL", "http://127.0.0.1:8080/api/auth/spotify/callback"),
		RateLimitPerMinute:  getIntEnv("RATE_LIMIT_PER_MINUTE", 30),
		CORSAllowedOrigins:  getStringSliceEnvDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		TrustedProxies:      getStringSliceEnv("TRUSTED_PROXIES"),
		SentryDSN:           getEnv("SENTRY_DSN", ""),
		SentryEnvironment:   getEnv("SENTRY_ENVIRONMENT", "production"),
	}
}

// SpotifyLoginEnabled reports whether OAuth credentials are configured.
func (c *Config) SpotifyLoginEnabled() bool {
	return c.SpotifyClientID != "" && c.SpotifyClientSecret != ""
}

func getStringSliceEnvDefault(key string, defaultValue []string) []string {
	if value := getStringSliceEnv(key); value != nil {
		return value
	}
	return defaultValue
}

func getStringSliceEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []string
	for _, s := range strings.Split(value, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
