package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	StoreDriver   string // Optional: KV driver (sqlite, file, memory) (default: sqlite)
	DatabaseFile  string // Optional: SQLite database file (default: ./hub.db)
	DataDir       string // Optional: directory for the file driver (default: ./data)
	StoreEncoding string // Optional: storage codec (base64, json, sealed) (default: base64)
	MasterKeyPath string // Optional: key file for the sealed codec, falls back to HUB_MASTER_KEY

	AuditWebhookURL     string        // Optional: POST audit events to this URL
	AuditWebhookSecret  string        // Optional: HS256 secret signing webhook deliveries
	AuditQueueSize      int           // Optional: audit queue capacity (default: 256)
	RedactFailedLogins  bool          // Optional: mask presented values on login_failure events (default: false)
	MinLoginDuration    time.Duration // Optional: least time every login takes (default: 250ms)
	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// masterKeyEnv holds raw key material when no key file is configured.
const masterKeyEnv = "HUB_MASTER_KEY"

func LoadConfig() Config {
	return Config{
		StoreDriver:         getEnvOrDefault("HUB_STORE_DRIVER", "sqlite"),
		DatabaseFile:        getEnvOrDefault("HUB_DATABASE_FILE", "hub.db"),
		DataDir:             getEnvOrDefault("HUB_DATA_DIR", "data"),
		StoreEncoding:       getEnvOrDefault("HUB_STORE_ENCODING", "base64"),
		MasterKeyPath:       os.Getenv("HUB_MASTER_KEY_PATH"),
		AuditWebhookURL:     os.Getenv("HUB_AUDIT_WEBHOOK_URL"),
		AuditWebhookSecret:  os.Getenv("HUB_AUDIT_WEBHOOK_SECRET"),
		AuditQueueSize:      getEnvIntOrDefault("HUB_AUDIT_QUEUE_SIZE", 256),
		RedactFailedLogins:  getEnvBoolOrDefault("HUB_AUDIT_REDACT_FAILED_LOGINS", false),
		MinLoginDuration:    getEnvDurationOrDefault("HUB_MIN_LOGIN_DURATION", 250*time.Millisecond),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are milliseconds.
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}

	return defaultValue
}
