package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/Alias1177/TrendScanner/internal/model"
)

// Config holds all application configuration
type Config struct {
	LogLevel string

	BinanceBaseURL string
	RequestTimeout time.Duration
	RequestsPerSec int
	MaxRetries     int

	BatchSize      int
	BatchPause     time.Duration
	SyntheticPause time.Duration
	SyntheticSeed  int64
	ForceSynthetic bool

	RedisAddr string
	RedisDB   int
	CacheTTL  time.Duration

	HTTPAddr string

	TelegramBotToken string
	TelegramChatID   int64
	NotifyTopN       int

	SettingsFile string
}

// FileConfig is the optional YAML file with scan settings and the asset universe
type FileConfig struct {
	Settings model.Settings `yaml:"settings"`
	Universe []string       `yaml:"universe"`
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	return FromEnv()
}

// FromEnv reads configuration from the process environment only
func FromEnv() (*Config, error) {
	var cfg Config

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.BinanceBaseURL = getEnvWithDefault("BINANCE_BASE_URL", "https://api.binance.com")
	cfg.RequestTimeout = time.Duration(getEnvIntWithDefault("REQUEST_TIMEOUT", 10)) * time.Second
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 10)
	cfg.MaxRetries = getEnvIntWithDefault("MAX_RETRIES", 0)

	cfg.BatchSize = getEnvIntWithDefault("BATCH_SIZE", 2)
	cfg.BatchPause = time.Duration(getEnvIntWithDefault("BATCH_PAUSE_MS", 800)) * time.Millisecond
	cfg.SyntheticPause = time.Duration(getEnvIntWithDefault("SYNTHETIC_BATCH_PAUSE_MS", 200)) * time.Millisecond
	cfg.SyntheticSeed = getEnvInt64WithDefault("SYNTHETIC_SEED", 0)
	cfg.ForceSynthetic = getEnvBoolWithDefault("FORCE_SYNTHETIC", false)

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisDB = getEnvIntWithDefault("REDIS_DB", 0)
	cfg.CacheTTL = time.Duration(getEnvIntWithDefault("CACHE_TTL", 60)) * time.Second

	cfg.HTTPAddr = getEnvWithDefault("HTTP_ADDR", ":8080")

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.TelegramChatID = getEnvInt64WithDefault("TELEGRAM_CHAT_ID", 0)
	cfg.NotifyTopN = getEnvIntWithDefault("NOTIFY_TOP_N", 5)

	cfg.SettingsFile = os.Getenv("SETTINGS_FILE")

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.RequestsPerSec <= 0 {
		return nil, fmt.Errorf("REQUESTS_PER_SEC must be positive, got %d", cfg.RequestsPerSec)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}

	return &cfg, nil
}

// TelegramEnabled reports whether scan summaries should be sent
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}

// LoadSettingsFile reads a YAML settings file. Keys missing from the file keep the values of
// base; a missing universe falls back to the default one.
func LoadSettingsFile(path string, base model.Settings) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	fc := FileConfig{Settings: base}
	fc.Settings.Timeframes = append([]string(nil), base.Timeframes...)
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing settings file %s: %w", path, err)
	}

	if err := fc.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings file %s: %w", path, err)
	}

	fc.Universe = model.NormalizeSymbols(fc.Universe)
	if len(fc.Universe) == 0 {
		fc.Universe = append([]string(nil), model.DefaultUniverse...)
	}

	return &fc, nil
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
