package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	APIURL                string        `mapstructure:"apiurl"`
	Username              string        `mapstructure:"username"`
	Password              string        `mapstructure:"password"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	HTTPDebug             bool          `mapstructure:"http_debug"`
	MetricsAddr           string        `mapstructure:"metrics_addr"`

	ManifestFile        string        `mapstructure:"manifest_file"`
	PublishersFile      string        `mapstructure:"publishers_file"`
	SyncIntervalSeconds int64         `mapstructure:"sync_interval"`
	SyncInterval        time.Duration `mapstructure:"-"`
	MaxAttempts         int           `mapstructure:"max_attempts"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// Load reads configuration from configs/.env, the environment and defaults.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides is Load with explicit values (e.g. CLI flags) taking
// precedence over the environment. Empty strings are ignored.
func LoadWithOverrides(overrides map[string]any) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	for key, val := range overrides {
		if s, ok := val.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		v.Set(key, val)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "gds-sync")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("apiurl", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("request_timeout_seconds", 30)
	v.SetDefault("http_debug", false)
	v.SetDefault("metrics_addr", "")
	v.SetDefault("manifest_file", "./configs/manifest.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("sync_interval", 300) // seconds
	v.SetDefault("max_attempts", 5)
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/journal.db")
	v.SetDefault("storage_ttl_seconds", int64((7*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.APIURL = strings.TrimSpace(cfg.APIURL)
	switch {
	case cfg.APIURL == "":
		return nil, fmt.Errorf("APIURL is required")
	case cfg.Username == "":
		return nil, fmt.Errorf("USERNAME is required")
	case cfg.Password == "":
		return nil, fmt.Errorf("PASSWORD is required")
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.SyncIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid sync_interval (must be positive seconds)")
	}
	cfg.SyncInterval = time.Duration(cfg.SyncIntervalSeconds) * time.Second

	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("invalid max_attempts (must be at least 1)")
	}

	cfg.StorageType = strings.ToLower(strings.TrimSpace(cfg.StorageType))
	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

// ClientConfig returns the connection settings for gds.New.
func (c *Config) ClientConfig() gds.Config {
	return gds.Config{URL: c.APIURL, Username: c.Username, Password: c.Password}
}

// Redacted returns a log-safe view of the configuration.
func (c *Config) Redacted() map[string]any {
	return map[string]any{
		"app_name":        c.AppName,
		"app_env":         c.Env,
		"log_level":       c.LogLevel,
		"apiurl":          c.APIURL,
		"username":        c.Username,
		"password_set":    c.Password != "",
		"request_timeout": c.RequestTimeout.String(),
		"http_debug":      c.HTTPDebug,
		"metrics_addr":    c.MetricsAddr,
		"manifest_file":   c.ManifestFile,
		"publishers_file": c.PublishersFile,
		"sync_interval":   c.SyncInterval.String(),
		"max_attempts":    c.MaxAttempts,
		"storage_type":    c.StorageType,
		"bbolt_path":      c.BBoltPath,
	}
}
