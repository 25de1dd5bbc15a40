// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings
type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DBPath    string        `envconfig:"DB_PATH" default:"~/.local/share/concert-events/catalog.db"`
	Retention time.Duration `envconfig:"RETENTION" default:"24h"`

	HTTPAddr   string `envconfig:"HTTP_ADDR" default:":8080"`
	CronSecret string `envconfig:"CRON_SECRET"`

	ExtractorURL       string        `envconfig:"EXTRACTOR_URL" default:"https://api.anthropic.com/v1/messages"`
	ExtractorAPIKey    string        `envconfig:"EXTRACTOR_API_KEY"`
	ExtractorModel     string        `envconfig:"EXTRACTOR_MODEL" default:"claude-sonnet-4-20250514"`
	ExtractorMaxTokens int           `envconfig:"EXTRACTOR_MAX_TOKENS" default:"16384"`
	ExtractorTimeout   time.Duration `envconfig:"EXTRACTOR_TIMEOUT" default:"120s"`

	FetchTimeout      time.Duration `envconfig:"FETCH_TIMEOUT" default:"15s"`
	FetchConcurrency  int           `envconfig:"FETCH_CONCURRENCY" default:"2"`
	EnrichConcurrency int           `envconfig:"ENRICH_CONCURRENCY" default:"5"`
	EnrichTimeout     time.Duration `envconfig:"ENRICH_TIMEOUT" default:"10s"`

	JuilcalURL    string `envconfig:"JUILCAL_URL" default:"https://zdwmhgrlcofyznavuvvm.supabase.co"`
	JuilcalAPIKey string `envconfig:"JUILCAL_API_KEY"`

	TablesFile string `envconfig:"TABLES_FILE"`

	// New listing announcements, see internal/notifier
	NotifyMax           int    `envconfig:"NOTIFY_MAX" default:"10"`
	TwitterAPIKey       string `envconfig:"TWITTER_API_KEY"`
	TwitterAPISecret    string `envconfig:"TWITTER_API_SECRET"`
	TwitterAccessToken  string `envconfig:"TWITTER_ACCESS_TOKEN"`
	TwitterAccessSecret string `envconfig:"TWITTER_ACCESS_SECRET"`
	TelegramBotToken    string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID      string `envconfig:"TELEGRAM_CHAT_ID"`
}

// Load reads an optional .env file, then the environment, and validates the
// result. envFile may be empty to use ./.env.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	cfg.DBPath = ExpandHome(cfg.DBPath)
	cfg.TablesFile = ExpandHome(cfg.TablesFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks ranges and required combinations
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.Retention < 0 {
		return fmt.Errorf("RETENTION must be >= 0")
	}
	if c.ExtractorMaxTokens < 1 {
		return fmt.Errorf("EXTRACTOR_MAX_TOKENS must be >= 1")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be >= 1")
	}
	if c.NotifyMax < 0 {
		return fmt.Errorf("NOTIFY_MAX must be >= 0")
	}
	if c.EnrichConcurrency < 1 {
		return fmt.Errorf("ENRICH_CONCURRENCY must be >= 1")
	}
	for name, d := range map[string]time.Duration{
		"EXTRACTOR_TIMEOUT": c.ExtractorTimeout,
		"FETCH_TIMEOUT":     c.FetchTimeout,
		"ENRICH_TIMEOUT":    c.EnrichTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	return nil
}

// ExtractionEnabled reports whether an extraction service key is configured.
// Without it only sources that publish structured data can run.
func (c *Config) ExtractionEnabled() bool {
	return strings.TrimSpace(c.ExtractorAPIKey) != ""
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
