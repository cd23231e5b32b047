package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderNone      = "none"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

const (
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

type Config struct {
	Port         string     `env:"PORT" envDefault:"8080"`
	Environment  string     `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelName string     `env:"LOG_LEVEL" envDefault:"info"`
	LogLevel     slog.Level `env:"-"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"redis"`
	RedisURL       string `env:"REDIS_URL" envDefault:"localhost:6379"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"parley.db"`
	DataDir        string `env:"DATA_DIR" envDefault:"data"`

	LLMProvider      string        `env:"LLM_PROVIDER" envDefault:"none"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	ModelName        string        `env:"MODEL_NAME"`
	NarrativeTimeout time.Duration `env:"NARRATIVE_TIMEOUT" envDefault:"10s"`
	SessionRetention time.Duration `env:"SESSION_RETENTION" envDefault:"30m"`

	// RNGSeed seeds session shuffles. Zero means seed from the clock.
	RNGSeed int64 `env:"RNG_SEED" envDefault:"0"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	cfg.StorageBackend = strings.ToLower(cfg.StorageBackend)
	cfg.LLMProvider = strings.ToLower(cfg.LLMProvider)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageBackend {
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend))
	}

	switch c.LLMProvider {
	case ProviderNone, "":
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}

	if c.NarrativeTimeout < 0 {
		errs = append(errs, errors.New("NARRATIVE_TIMEOUT must not be negative"))
	}
	if c.SessionRetention < 0 {
		errs = append(errs, errors.New("SESSION_RETENTION must not be negative"))
	}

	return errors.Join(errs...)
}

// StorageDSN is the SQLite path for the sqlite and memory backends.
func (c *Config) StorageDSN() string {
	if c.StorageBackend == BackendMemory {
		return ":memory:"
	}
	return c.SQLitePath
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
