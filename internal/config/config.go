package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"
)

// Config holds all application configuration.
// Supports environment variables with sensible defaults.
//
// Environment Variables:
// Backend Configuration:
// - BACKEND_URL: Base URL of the video-assistant backend (default: http://localhost:8000)
// - HTTP_TIMEOUT: Request timeout in seconds (default: 30)
//
// Storage Configuration:
// - DATA_DIR: Directory for the local state database (default: ./data)
//
// Locale Configuration:
// - LOCALE: Default UI locale when none has been persisted yet (default: en)
//
// Progress Configuration:
// - PROGRESS_POLL_SECONDS: Polling cadence for processing status (default: 1)
// - PROGRESS_SLOW_SECONDS: Delay before the "still working" hint (default: 20)
// - PROGRESS_GRACE_MS: Grace delay after completion before re-enabling input (default: 500)
//
// Notification Configuration:
// - NOTIFY_TTL_SECONDS: Auto-dismiss delay for notifications (default: 3)
//
// Refresh Configuration:
// - VIDEO_REFRESH_CRON: Schedule for background video-list refresh (default: @every 5m)

type Config struct {
	// Backend Configuration
	Backend BackendConfig `json:"backend"`

	// Storage Configuration
	Storage StorageConfig `json:"storage"`

	// Locale Configuration
	Locale LocaleConfig `json:"locale"`

	// Progress Configuration
	Progress ProgressConfig `json:"progress"`

	// Notification Configuration
	Notify NotifyConfig `json:"notify"`

	// Refresh Configuration
	Refresh RefreshConfig `json:"refresh"`
}

// BackendConfig holds the configuration for the remote backend client
type BackendConfig struct {
	BaseURL string `json:"base_url"`
	Timeout int    `json:"timeout"`
}

// StorageConfig holds the configuration for local persistent state
type StorageConfig struct {
	DataDir string `json:"data_dir"`
}

func (c StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "tubemind.db")
}

// LocaleConfig holds the default locale used before one is persisted
type LocaleConfig struct {
	Default string `json:"default"`
}

// ProgressConfig holds the timing of the processing-status monitor
type ProgressConfig struct {
	PollInterval time.Duration `json:"poll_interval"`
	SlowDelay    time.Duration `json:"slow_delay"`
	GraceDelay   time.Duration `json:"grace_delay"`
}

// NotifyConfig holds the notification auto-dismiss delay
type NotifyConfig struct {
	TTL time.Duration `json:"ttl"`
}

// RefreshConfig holds the background video-list refresh schedule
type RefreshConfig struct {
	CronExpr string `json:"cron_expr"`
}

// Option is a function type for configuring Config
type Option func(*Config)

// NewFromEnv creates a new Config instance with values from environment variables and options
func NewFromEnv(opts ...Option) (*Config, error) {
	config := &Config{
		Backend: BackendConfig{
			BaseURL: getEnvString("BACKEND_URL", "http://localhost:8000"),
			Timeout: getEnvInt("HTTP_TIMEOUT", 30),
		},
		Storage: StorageConfig{
			DataDir: getEnvString("DATA_DIR", "data"),
		},
		Locale: LocaleConfig{
			Default: getEnvString("LOCALE", "en"),
		},
		Progress: ProgressConfig{
			PollInterval: time.Duration(getEnvInt("PROGRESS_POLL_SECONDS", 1)) * time.Second,
			SlowDelay:    time.Duration(getEnvInt("PROGRESS_SLOW_SECONDS", 20)) * time.Second,
			GraceDelay:   time.Duration(getEnvInt("PROGRESS_GRACE_MS", 500)) * time.Millisecond,
		},
		Notify: NotifyConfig{
			TTL: time.Duration(getEnvInt("NOTIFY_TTL_SECONDS", 3)) * time.Second,
		},
		Refresh: RefreshConfig{
			CronExpr: getEnvString("VIDEO_REFRESH_CRON", "@every 5m"),
		},
	}

	// Apply custom options
	for _, opt := range opts {
		opt(config)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// validate checks if all required configuration is properly set
func (c *Config) validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if _, err := language.Parse(c.Locale.Default); err != nil {
		return fmt.Errorf("invalid LOCALE %q: %w", c.Locale.Default, err)
	}
	if c.Progress.PollInterval <= 0 {
		return fmt.Errorf("PROGRESS_POLL_SECONDS must be positive")
	}
	if _, err := cron.ParseStandard(c.Refresh.CronExpr); err != nil {
		return fmt.Errorf("invalid VIDEO_REFRESH_CRON: %w", err)
	}
	return nil
}

// getEnvString gets a string value from environment variables with default
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment variables with default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
