// Package config loads and validates service configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/JakeFAU/seo-reporter/internal/storage/local"
)

// Storage backends accepted by storage.backend.
const (
	StorageNone   = "none"
	StorageMemory = "memory"
	StorageLocal  = "local"
	StorageGCS    = "gcs"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Webhooks WebhooksConfig `mapstructure:"webhooks"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PubSub   PubSubConfig   `mapstructure:"pubsub"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	// APIKey, when set, is required on every /api request.
	APIKey string `mapstructure:"api_key"`
	// AuditRateLimitRPS throttles /api/generate-audit per client IP; 0 disables.
	AuditRateLimitRPS   float64 `mapstructure:"audit_rate_limit_rps"`
	AuditRateLimitBurst int     `mapstructure:"audit_rate_limit_burst"`
}

// DatabaseConfig controls access to Postgres. An empty DSN selects the in-memory store.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// WebhooksConfig holds the n8n webhook endpoints.
type WebhooksConfig struct {
	AuditURL  string        `mapstructure:"audit_url"`
	ScrapeURL string        `mapstructure:"scrape_url"`
	EmailURL  string        `mapstructure:"email_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AuthConfig configures session cookie verification.
type AuthConfig struct {
	Secret     string `mapstructure:"secret"`
	CookieName string `mapstructure:"cookie_name"`
}

// StorageConfig selects where raw webhook payloads are archived.
type StorageConfig struct {
	Backend string       `mapstructure:"backend"`
	Bucket  string       `mapstructure:"bucket"`
	Prefix  string       `mapstructure:"prefix"`
	Local   local.Config `mapstructure:"local"`
}

// PubSubConfig holds metadata for domain event notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// Unprefixed environment names accepted alongside the SEO_ ones.
var legacyEnv = map[string]string{
	"webhooks.audit_url":  "N8N_AUDIT_WEBHOOK_URL",
	"webhooks.scrape_url": "N8N_SCRAPE_WEBHOOK_URL",
	"webhooks.email_url":  "N8N_SEND_EMAIL_WEBHOOK_URL",
	"database.dsn":        "DATABASE_URL",
	"server.port":         "PORT",
	"auth.secret":         "BETTER_AUTH_SECRET",
}

// Load builds a Config from disk/environment. A .env file in the working
// directory is applied first without overriding variables already set.
func Load(path string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("SEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	for key, name := range legacyEnv {
		prefixed := "SEO_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, name); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", name, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.audit_rate_limit_rps", 0)
	v.SetDefault("server.audit_rate_limit_burst", 5)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_idle_time", 30*time.Second)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 2*time.Second)
	v.SetDefault("webhooks.audit_url", "")
	v.SetDefault("webhooks.scrape_url", "")
	v.SetDefault("webhooks.email_url", "")
	v.SetDefault("webhooks.timeout", 5*time.Minute)
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.cookie_name", "better-auth.session_token")
	v.SetDefault("storage.backend", StorageNone)
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "payloads")
	v.SetDefault("storage.local.base_dir", "")
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Server.AuditRateLimitRPS < 0 {
		return fmt.Errorf("server.audit_rate_limit_rps must be >= 0")
	}
	if c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be > 0")
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database.min_conns must be between 0 and database.max_conns")
	}
	if c.Database.MaxConnIdleTime <= 0 {
		return fmt.Errorf("database.max_conn_idle_time must be > 0")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("database.connect_timeout must be > 0")
	}
	if c.Webhooks.Timeout <= 0 {
		return fmt.Errorf("webhooks.timeout must be > 0")
	}
	switch c.Storage.Backend {
	case "", StorageNone, StorageMemory:
	case StorageLocal:
		if strings.TrimSpace(c.Storage.Local.BaseDir) == "" {
			return fmt.Errorf("storage.local.base_dir must be set when storage.backend is local")
		}
	case StorageGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket must be set when storage.backend is gcs")
		}
	default:
		return fmt.Errorf("storage.backend %q is not supported", c.Storage.Backend)
	}
	if c.PubSub.TopicName != "" && c.PubSub.ProjectID == "" {
		return fmt.Errorf("pubsub.project_id must be set when pubsub.topic_name is set")
	}
	return nil
}

// PubSubEnabled reports whether domain events should be published.
func (c Config) PubSubEnabled() bool {
	return c.PubSub.ProjectID != "" && c.PubSub.TopicName != ""
}
