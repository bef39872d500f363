package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	uberconfig "go.uber.org/config"
)

// Storage backends
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Storage        string        `yaml:"storage"`
	DatabaseURL    string        `yaml:"database_url"`
	MigrationsPath string        `yaml:"migrations_path"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	Port           string        `yaml:"port"`
	PrometheusPort string        `yaml:"prometheus_port"`
	TelegramToken  string        `yaml:"telegram_token"`
	OwnerChatID    int64         `yaml:"owner_chat_id"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	Timezone       string        `yaml:"timezone"`
	AdminUsername  string        `yaml:"admin_username"`
	AdminPassword  string        `yaml:"admin_password"`
}

// Defaults returns the configuration used when nothing else is set
func Defaults() *Config {
	return &Config{
		Storage:        StoragePostgres,
		MigrationsPath: "migrations",
		LogLevel:       "info",
		LogFormat:      "text",
		Port:           "8080",
		PrometheusPort: "9090",
		SessionTTL:     7 * 24 * time.Hour,
		Timezone:       "America/Mexico_City",
	}
}

// Load builds the configuration from, in increasing priority: defaults, the
// YAML file named by CONFIG_PATH, a .env file, and the process environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	cfg := Defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	provider, err := uberconfig.NewYAML(
		uberconfig.File(path),
		uberconfig.Expand(os.LookupEnv),
	)
	if err != nil {
		return fmt.Errorf("failed to create config provider: %w", err)
	}

	if err := provider.Get(uberconfig.Root).Populate(c); err != nil {
		return fmt.Errorf("failed to populate config: %w", err)
	}

	return nil
}

// overrideFromEnv overrides config values with environment variables if present
func (c *Config) overrideFromEnv() error {
	setString(&c.Storage, "STORAGE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.MigrationsPath, "MIGRATIONS_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.Port, "PORT")
	setString(&c.PrometheusPort, "PROMETHEUS_PORT")
	setString(&c.TelegramToken, "TELEGRAM_TOKEN")
	setString(&c.SessionSecret, "SESSION_SECRET")
	setString(&c.Timezone, "TIMEZONE")
	setString(&c.AdminUsername, "ADMIN_USERNAME")
	setString(&c.AdminPassword, "ADMIN_PASSWORD")

	if val := os.Getenv("OWNER_CHAT_ID"); val != "" {
		id, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("OWNER_CHAT_ID must be an integer: %w", err)
		}
		c.OwnerChatID = id
	}

	if val := os.Getenv("SESSION_TTL"); val != "" {
		ttl, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("SESSION_TTL must be a duration: %w", err)
		}
		c.SessionTTL = ttl
	}

	return nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE %q, want %s or %s", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET environment variable is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if (c.AdminUsername == "") != (c.AdminPassword == "") {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the time zone used for "today" and for rendering clock times
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TelegramEnabled reports whether the bot and the Telegram notifier should run
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}
