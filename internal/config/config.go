package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Store settings
	StoreDriver string
	SQLitePath  string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// LLM settings
	LLMProvider      string
	LLMModel         string
	LLMMaxTokens     int
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	GeminiAPIKey     string

	// Upstream FPL API
	FPLBaseURL  string
	HTTPTimeout time.Duration

	// Redis settings, empty disables refresh events and the run log
	RedisAddr string

	// API settings
	APIAddr string
	APIKey  string
	DevMode bool

	LogLevel string
}

func Load() *Config {
	return &Config{
		// Store
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		SQLitePath:  getEnv("SQLITE_PATH", "fpl_data.db"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "fpl"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// LLM
		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		LLMModel:         getEnv("LLM_MODEL", ""),
		LLMMaxTokens:     getIntEnv("LLM_MAX_TOKENS", 1024),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),

		// FPL
		FPLBaseURL:  getEnv("FPL_BASE_URL", "https://fantasy.premierleague.com/api"),
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 30*time.Second),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// API
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// LLMAPIKey returns the key for the configured provider.
func (c *Config) LLMAPIKey() string {
	switch c.LLMProvider {
	case "openrouter":
		return c.OpenRouterAPIKey
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// Validate checks settings needed by every command. The LLM key is checked
// separately by RequireLLM since refresh and schema run without one.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite store")
		}
	case "clickhouse":
		if c.ClickHouseAddr == "" {
			return fmt.Errorf("CLICKHOUSE_ADDR is required for the clickhouse store")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q (want sqlite or clickhouse)", c.StoreDriver)
	}

	switch c.LLMProvider {
	case "openai", "openrouter", "gemini":
	default:
		return fmt.Errorf("invalid LLM_PROVIDER %q (want openai, openrouter or gemini)", c.LLMProvider)
	}

	if c.LLMMaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

// RequireLLM reports a missing API key for the configured provider.
func (c *Config) RequireLLM() error {
	if c.LLMAPIKey() == "" {
		return fmt.Errorf("%s_API_KEY is required for LLM_PROVIDER=%s", strings.ToUpper(c.LLMProvider), c.LLMProvider)
	}
	return nil
}

// LoadDotEnv loads path into the environment if it exists. Variables already
// set in the environment win.
func LoadDotEnv(path string, logger *logrus.Logger) {
	if err := godotenv.Load(path); err != nil {
		logger.Debugf("no .env file found at %s, using system environment variables", path)
		return
	}
	logger.Debugf("loaded .env from %s", path)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
