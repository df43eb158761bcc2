package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	// Telegram
	TelegramToken string `env:"BOT_TOKEN,required,notEmpty"`

	// Database
	DatabasePath string `env:"DATABASE_PATH" envDefault:"./data/bot.db"`

	// Google Sheets
	SpreadsheetID      string `env:"SPREADSHEET_ID,required,notEmpty"`
	ServiceAccountFile string `env:"SERVICE_ACCOUNT_FILE" envDefault:"service_account.json"`
	ReportSheetName    string `env:"REPORT_SHEET_NAME" envDefault:"Отчет по фотографиям"`

	// Sync
	SyncInterval  time.Duration `env:"SYNC_INTERVAL" envDefault:"2m"`
	SyncBatchSize int           `env:"SYNC_BATCH_SIZE" envDefault:"20"` // rows per write request

	// Message index retention
	CleanupInterval    time.Duration `env:"CLEANUP_INTERVAL" envDefault:"12h"`
	MessageTopicMaxAge int           `env:"MESSAGE_TOPIC_RETENTION_DAYS" envDefault:"30"`

	// Counting
	Timezone string `env:"TIMEZONE" envDefault:"Europe/Moscow"`
	// When true every photo of an album counts separately; albums arrive
	// as one message per photo either way, so both modes currently add 1.
	CountEachPhotoInAlbum bool `env:"COUNT_EACH_PHOTO_IN_ALBUM" envDefault:"true"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // "json" or "text"
}

// Location parses the configured time zone. All day boundaries for
// counting and reporting use this zone, never UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.SyncBatchSize < 1 {
		return nil, fmt.Errorf("SYNC_BATCH_SIZE must be positive, got %d", cfg.SyncBatchSize)
	}
	if cfg.MessageTopicMaxAge < 1 {
		return nil, fmt.Errorf("MESSAGE_TOPIC_RETENTION_DAYS must be positive, got %d", cfg.MessageTopicMaxAge)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}
