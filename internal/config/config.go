package config

import (
	"os"
	"strconv"
)

// Config crm-backend-lite (HTTP API) configuration
type Config struct {
	HTTP struct {
		Addr              string
		CORSAllowedOrigin string
	}
	Mongo struct {
		URI      string
		Database string
	}
	Auth struct {
		JWTSecret       string
		TokenExpiryDays int
		Environment     string
	}
	RedisEnabled bool
	Redis        struct {
		Addr     string
		Password string
		DB       int
	}
	Webhook struct {
		URL string
	}
	Log struct {
		Level  string
		Format string
	}
}

// Production returns true when cookies must carry cross-site attributes.
func (c *Config) Production() bool {
	return c.Auth.Environment == "production"
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")
	cfg.HTTP.CORSAllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	cfg.Mongo.URI = getEnv("MONGO_URI", "mongodb://localhost:27017")
	cfg.Mongo.Database = getEnv("MONGO_DB", "crm")

	cfg.Auth.JWTSecret = getEnv("JWT_SECRET", "dev-secret-change-me")
	cfg.Auth.TokenExpiryDays = parseInt(getEnv("TOKEN_EXPIRY_DAYS", "30"), 30)
	cfg.Auth.Environment = getEnv("ENVIRONMENT", "development")

	// Default to false for local dev: without Redis, sessions fall back to
	// the in-memory store so plain `go run` still works.
	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	// Empty URL disables outbound notifications.
	cfg.Webhook.URL = getEnv("WEBHOOK_URL", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
