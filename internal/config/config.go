package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	S3Bucket    string
	AWSRegion   string
	S3Endpoint  string
	RabbitMQURL string
	RedisURL    string
	CacheTTL    time.Duration
	APIKey      string
	PublicURL   string
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	MailFrom    string
	LogLevel    slog.Level
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Default().Warn("loading .env failed", "error", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		S3Bucket:    getEnv("S3_BUCKET", ""),
		AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		CacheTTL:    getDuration("CACHE_TTL", 5*time.Minute),
		APIKey:      getEnv("API_KEY", ""),
		PublicURL:   getEnv("PUBLIC_URL", "http://localhost:8080"),
		SMTPHost:    getEnv("SMTP_HOST", "localhost"),
		SMTPPort:    getEnv("SMTP_PORT", "1025"),
		SMTPUser:    getEnv("SMTP_USER", ""),
		SMTPPass:    getEnv("SMTP_PASSWORD", ""),
		MailFrom:    getEnv("MAIL_FROM", "noreply@ws-blog.local"),
		LogLevel:    getLevel("LOG_LEVEL", slog.LevelInfo),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Default().Warn("invalid duration, using default", "key", key, "value", value)
		return fallback
	}
	return d
}

func getLevel(key string, fallback slog.Level) slog.Level {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		slog.Default().Warn("invalid log level, using default", "key", key, "value", value)
		return fallback
	}
	return level
}

// NewLogger returns the process-wide JSON logger.
func (c *Config) NewLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: c.LogLevel}))
}
