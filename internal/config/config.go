package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the dispatcher and its storage backends.
type Config struct {
	LogLevel string
	Redis    RedisConfig
	Database DatabaseConfig
	Provider ProviderConfig
}

// RedisConfig holds Redis connection settings for the preference store.
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// DatabaseConfig holds Postgres settings for the encrypted credential
// repository. Empty URL means the SQL backend is not used.
type DatabaseConfig struct {
	URL           string
	EncryptionKey string // base64-encoded AES key
}

// ProviderConfig holds provider-related settings.
type ProviderConfig struct {
	RequestTimeout time.Duration // timeout for provider HTTP requests
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return duration
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		LogLevel: getEnvString("LOG_LEVEL", "warning"),
		Redis: RedisConfig{
			Address:   getEnvString("REDIS_ADDR", ""),
			Password:  getEnvString("REDIS_PASSWORD", ""),
			DB:        getEnvInt("REDIS_DB", 0),
			KeyPrefix: getEnvString("REDIS_KEY_PREFIX", "settings"),
		},
		Database: DatabaseConfig{
			URL:           getEnvString("DATABASE_URL", ""),
			EncryptionKey: getEnvString("CREDENTIAL_ENCRYPTION_KEY", ""),
		},
		Provider: ProviderConfig{
			RequestTimeout: getEnvDuration("PROVIDER_REQUEST_TIMEOUT", 60*time.Second),
		},
	}
}
