package server

import (
	"os"
	"strconv"

	"github.com/brfinance/finsim/pkg/constants"
	"github.com/joho/godotenv"
)

// Settings holds environment-driven server configuration. Values from a
// local .env file are honored when present; config-file values take
// precedence where both exist.
type Settings struct {
	Address        string
	MaxRequestSize int64
	IndexBaseURL   string
	RedisAddr      string
}

// LoadSettings reads server settings from the environment.
func LoadSettings() *Settings {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	return &Settings{
		Address:        getEnvString("FINSIM_ADDR", constants.DefaultServerAddress),
		MaxRequestSize: getEnvInt64("FINSIM_MAX_REQUEST_BYTES", constants.DefaultMaxRequestSizeBytes),
		IndexBaseURL:   getEnvString("FINSIM_INDEX_BASE_URL", ""),
		RedisAddr:      getEnvString("FINSIM_REDIS_ADDR", ""),
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
