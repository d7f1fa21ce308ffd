// Package config loads runtime settings for the pourfix service from the
// environment, reading a .env file in development.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Job store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

type Config struct {
	Env      string
	Port     string
	DataDir  string
	LogLevel string
	Store    StoreConfig
	OpenAI   OpenAIConfig
	OTel     OTelConfig
}

type StoreConfig struct {
	Backend    string
	RedisURL   string
	RedisTTL   time.Duration
	SQLitePath string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type OTelConfig struct {
	Endpoint    string
	ServiceName string
	Version     string
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	if getEnv("POURFIX_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	dataDir := getEnv("DATA_DIR", "./data")
	cfg := Config{
		Env:      getEnv("POURFIX_ENV", "development"),
		Port:     getEnv("PORT", "8000"),
		DataDir:  dataDir,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Store: StoreConfig{
			Backend:    getEnv("JOB_STORE", StoreMemory),
			RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
			RedisTTL:   time.Duration(getEnvInt("REDIS_JOB_TTL_HOURS", 24)) * time.Hour,
			SQLitePath: getEnv("SQLITE_PATH", dataDir+"/jobs.db"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		OTel: OTelConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "pourfix"),
			Version:     getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
	}

	switch cfg.Store.Backend {
	case StoreMemory, StoreRedis, StoreSQLite:
	default:
		return Config{}, fmt.Errorf("JOB_STORE must be one of memory, redis, sqlite, got %q", cfg.Store.Backend)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c OpenAIConfig) Enabled() bool {
	return c.APIKey != ""
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
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
