package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Env        string
	SessionKey string

	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database settings.
type DatabaseConfig struct {
	DSN string
}

// StorageConfig holds payload storage settings. Backend is either
// "local" (media root on disk) or "s3".
type StorageConfig struct {
	Backend         string
	MediaRoot       string
	Bucket          string
	Endpoint        string
	Region          string
	AccessKeyID     string
	AccessKeySecret string
	// PublicURL is a format string with a single %s for the object key,
	// e.g. "https://cdn.example.com/%s".
	PublicURL string
}

// RateLimitConfig holds API rate limiting settings.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from the environment, with a .env file as
// fallback when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	return &Config{
		Env:        getEnv("APP_ENV", "development"),
		SessionKey: getEnv("SESSION_KEY", "insecure-dev-session-key"),
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8000"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 5*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			DSN: getEnv("DSN", "host=localhost user=postgres dbname=audiohub sslmode=disable"),
		},
		Storage: StorageConfig{
			Backend:         getEnv("STORAGE_BACKEND", "local"),
			MediaRoot:       getEnv("MEDIA_ROOT", "media"),
			Bucket:          getEnv("BUCKET_NAME", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "auto"),
			AccessKeyID:     getEnv("ACCESS_KEY_ID", ""),
			AccessKeySecret: getEnv("ACCESS_KEY_SECRET", ""),
			PublicURL:       getEnv("PUBLIC_URL", ""),
		},
		RateLimit: RateLimitConfig{
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Window:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
		},
	}
}

// Development reports whether the app runs in development mode. Media
// files are only served by this process in development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid duration for %s, using default %s", key, fallback)
	}
	return fallback
}
