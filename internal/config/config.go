package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string // "sqlite" (default), "postgres", "mysql"
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	BotToken        string
	OwnerTelegramID int64

	SessionSecret    string
	SessionTTL       time.Duration
	CaptureWindow    time.Duration
	HistoryLimit     int
	LoginRedirectURL string
	CookieSecure     bool

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Region    string
	S3UseSSL    bool

	CORSAllowOrigins []string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   getEnv("DB_TYPE", "sqlite"),
		DatabasePath:   getEnv("DATABASE_PATH", "./momentary.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		BotToken:        getEnv("TELEGRAM_BOT_TOKEN", ""),
		OwnerTelegramID: getEnvInt64("TELEGRAM_OWNER_ID", 0),

		SessionSecret:    getEnv("APP_SESSION_SECRET", ""),
		SessionTTL:       14 * 24 * time.Hour,
		CaptureWindow:    60 * time.Second,
		HistoryLimit:     1440,
		LoginRedirectURL: getEnv("TELEGRAM_LOGIN_REDIRECT_URL", "/"),
		CookieSecure:     getEnvBool("COOKIE_SECURE", false),

		S3Endpoint:  getEnv("MINIO_ENDPOINT", "minio:9000"),
		S3AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		S3SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		S3Bucket:    getEnv("MINIO_BUCKET", "photos"),
		S3Region:    getEnv("MINIO_REGION", "us-east-1"),
		S3UseSSL:    getEnvBool("MINIO_SECURE", false),

		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "")),
	}
}

// Validate checks configuration the server cannot run without
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	switch strings.ToLower(c.DatabaseType) {
	case "sqlite", "sqlite3", "":
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH cannot be empty")
		}
	case "postgres", "postgresql", "mysql":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for %s", c.DatabaseType)
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
	return nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

// splitList parses a comma-separated list, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
