package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	StorageBolt     = "bolt"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"
)

type Config struct {
	// Core
	BotToken   string `env:"BOT_TOKEN,required,notEmpty"`
	BackendURL string `env:"BACKEND_URL" envDefault:"http://localhost:8000"`

	// Object store (Cloudinary-compatible unsigned upload)
	ObjectStoreURL string `env:"OBJECT_STORE_URL,required,notEmpty"`
	UploadPreset   string `env:"OBJECT_STORE_UPLOAD_PRESET,required,notEmpty"`
	UploadFolder   string `env:"OBJECT_STORE_FOLDER" envDefault:"medical_reports"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"bolt"`
	BoltPath       string `env:"BOLT_PATH" envDefault:"data/medivault.db"`
	DatabaseURL    string `env:"DATABASE_URL"`
	RedisURL       string `env:"REDIS_URL"`

	// Access: empty means everyone may use the bot
	AllowedUserIDs []int64 `env:"ALLOWED_USER_IDS" envSeparator:","`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// Bot behavior
	DropPendingUpdates bool `env:"BOT_DROP_PENDING_UPDATES" envDefault:"false"`

	// Telegram ops logging
	LogTelegramChatID int64 `env:"LOG_TELEGRAM_CHAT_ID"`
	LogTopicError     int   `env:"LOG_TOPIC_ERROR"`
	LogTopicUpload    int   `env:"LOG_TOPIC_UPLOAD"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")
	c.ObjectStoreURL = strings.TrimRight(c.ObjectStoreURL, "/")

	switch c.StorageBackend {
	case StorageBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH is required for storage backend %q", c.StorageBackend)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for storage backend %q", c.StorageBackend)
		}
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for storage backend %q", c.StorageBackend)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	return nil
}

// IsAllowed reports whether the Telegram user may use the bot.
func (c *Config) IsAllowed(telegramID int64) bool {
	if len(c.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.AllowedUserIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
