// Package config resolves the storefront configuration once at startup.
// Values are read from the environment, optionally seeded from a .env file,
// and fall back to defaults suitable for a local development backend.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Credential store backends accepted by CREDENTIALS_BACKEND.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

var (
	LogLevel         string
	ServerRunAddress string

	// APIBaseURL is the root of the storefront REST backend.
	APIBaseURL string
	// RequestTimeout bounds a single backend round trip.
	RequestTimeout time.Duration
	// BackendRateLimit and BackendRateBurst shape outbound traffic to the backend.
	BackendRateLimit float64
	BackendRateBurst int

	CredentialsBackend string
	CredentialsFile    string
	// CredentialsKey seals the credentials file when set.
	CredentialsKey string
	DatabaseURI    string
	RedisURL       string
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	LogLevel = getEnv("LOG_LEVEL", "info")
	ServerRunAddress = getEnv("SERVER_RUN_ADDRESS", "127.0.0.1:5173")
	APIBaseURL = getEnv("API_BASE_URL", "http://localhost:8000")
	RequestTimeout = getDuration("REQUEST_TIMEOUT", 15*time.Second)
	BackendRateLimit = getFloat("BACKEND_RATE_LIMIT", 20)
	BackendRateBurst = getInt("BACKEND_RATE_BURST", 10)

	CredentialsBackend = getEnv("CREDENTIALS_BACKEND", BackendFile)
	CredentialsFile = getEnv("CREDENTIALS_FILE", "session.json")
	CredentialsKey = os.Getenv("CREDENTIALS_KEY")
	DatabaseURI = getEnv("DATABASE_URI", "host=localhost user=postgres password=password dbname=storefront sslmode=disable")
	RedisURL = getEnv("REDIS_URL", "redis://localhost:6379/0")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("invalid %s %q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
