// Package config reads process settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const DefaultAPIKey = "your-secret-api-key"

type Config struct {
	Port     string
	DataDir  string
	LogLevel string

	APIKey string

	RateLimit  int
	RateWindow time.Duration
	TrustProxy bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MetricsEnabled bool
	MetricsToken   string
}

// Load applies .env files when present; variables already set in the
// environment win over the file.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, err
		}
	}

	return Config{
		Port:     EnvDefault("PORT", "3000"),
		DataDir:  EnvDefault("DATA_DIR", "data"),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		APIKey: EnvDefault("API_KEY", DefaultAPIKey),

		RateLimit:  EnvIntDefault("RATE_LIMIT", 100),
		RateWindow: EnvDurationDefault("RATE_WINDOW", 60*time.Second),
		TrustProxy: EnvBoolDefault("TRUST_PROXY", false),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),

		MetricsEnabled: EnvBoolDefault("METRICS_ENABLED", true),
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
	}, nil
}

func EnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	n, err := strconv.Atoi(EnvDefault(key, ""))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(EnvDefault(key, ""))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvBoolDefault(key string, def bool) bool {
	b, err := strconv.ParseBool(EnvDefault(key, ""))
	if err != nil {
		return def
	}
	return b
}
