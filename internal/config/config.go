package config

import (
	"errors"
	"os"
	"strings"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	RedisAddr  string

	// Spotify client-credentials configuration
	SpotifyClientID     string
	SpotifyClientSecret string

	CORSOrigins []string
}

var ErrMissingJWTSecret = errors.New("JWT_SECRET is not set")

// Load reads configuration from the environment. A missing JWT_SECRET is a
// startup error rather than a silent fallback: a guessable signing key makes
// every session token forgeable.
func Load() (*Config, error) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return &Config{
		ServerAddr:          getEnvOrDefault("SERVER_ADDR", ":8080"),
		DBHost:              getEnvOrDefault("DB_HOST", "localhost"),
		DBPort:              getEnvOrDefault("DB_PORT", "5432"),
		DBUser:              getEnvOrDefault("DB_USER", "tunefave"),
		DBPassword:          getEnvOrDefault("DB_PASSWORD", "tunefave_dev_password"),
		DBName:              getEnvOrDefault("DB_NAME", "tunefave"),
		JWTSecret:           jwtSecret,
		RedisAddr:           getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		CORSOrigins:         splitList(getEnvOrDefault("CORS_ORIGINS", "*")),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
