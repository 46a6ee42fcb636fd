package config

import (
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	App    AppConfig
	Logger LoggerConfig
	SQLite SQLiteConfig
	API    APIConfig
	Sync   SyncConfig
}

type AppConfig struct {
	AppEnv    string
	DeviceID  string
	CashierID string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type SQLiteConfig struct {
	Path    string
	SeedDev bool
}

type APIConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type SyncConfig struct {
	Interval      time.Duration
	ProbeInterval time.Duration
	MaxAttempts   int
	OrderLimit    int
}

func LoadEnv() *Config {
	// Basic config loading
	// In a real scenario, use structured config loader like viper or koanf
	return &Config{
		App: AppConfig{
			AppEnv:    getEnv("APP_ENV", "dev"),
			DeviceID:  getEnv("POS_DEVICE_ID", uuid.NewString()),
			CashierID: getEnv("POS_CASHIER_ID", ""),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		SQLite: SQLiteConfig{
			Path:    getEnv("SQLITE_PATH", "techzu_pos.db"),
			SeedDev: getEnvBool("SQLITE_SEED_DEV", false),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:3001/api"),
			Token:   getEnv("API_TOKEN", ""),
			Timeout: getEnvDuration("API_TIMEOUT", 10*time.Second),
		},
		Sync: SyncConfig{
			Interval:      getEnvDuration("SYNC_INTERVAL", 3*time.Minute),
			ProbeInterval: getEnvDuration("SYNC_PROBE_INTERVAL", 15*time.Second),
			MaxAttempts:   getEnvInt("SYNC_MAX_ATTEMPTS", 5),
			OrderLimit:    getEnvInt("SYNC_ORDER_LIST_LIMIT", 20),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
