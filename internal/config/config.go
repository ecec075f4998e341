package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	// Platform API the console fronts.
	PlatformBaseURL string
	PlatformToken   string
	RequestTimeout  time.Duration

	// Retry tuning for platform calls.
	MaxRetries  int
	BackoffUnit time.Duration

	// Demo/offline mode.
	FallbackEnabled bool
	FallbackDBPath  string

	// Console HTTP surface.
	ListenAddr string

	// Shared cache across console replicas; empty means in-memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	OTLPEndpoint string
	LogLevel     string
	LogFormat    string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:         getenv("APP_SERVICE", "tilldesk"),
		AppVersion:      getenv("APP_VERSION", "0.1.0"),
		Environment:     getenv("ENVIRONMENT", "development"),
		PlatformBaseURL: strings.TrimRight(getenv("PLATFORM_BASE_URL", "http://localhost:8080/api/v1"), "/"),
		PlatformToken:   strings.TrimSpace(getenv("PLATFORM_TOKEN", "")),
		RequestTimeout:  getenvDuration("PLATFORM_REQUEST_TIMEOUT", 15*time.Second),
		MaxRetries:      getenvInt("PLATFORM_MAX_RETRIES", 2),
		BackoffUnit:     getenvDuration("PLATFORM_BACKOFF_UNIT", 500*time.Millisecond),
		FallbackEnabled: getenvBool("FALLBACK_ENABLED", false),
		FallbackDBPath:  getenv("FALLBACK_DB_PATH", "tilldesk-demo.db"),
		ListenAddr:      getenv("LISTEN_ADDR", ":8089"),
		RedisAddr:       strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		RedisDB:         getenvInt("REDIS_DB", 0),
		OTLPEndpoint:    getenv("OTLP_ENDPOINT", "localhost:4317"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
	}
}

// Module wires configuration via Fx.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Provide(NewConsolePolicyHolder),
)

func getenv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[config] invalid bool for %s: %q", key, raw)
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[config] invalid int for %s: %q", key, raw)
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		log.Printf("[config] invalid duration for %s: %q", key, raw)
		return fallback
	}
	return value
}
