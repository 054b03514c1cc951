// Package config loads the projectprefs server and CLI configuration.
//
// Values come from a YAML file, then environment variables override them,
// then defaults fill whatever is still empty.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage types accepted in Storage.Type.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// EnvConfigPath names the variable holding the configuration file path.
const EnvConfigPath = "PROJECTPREFS_CONFIG"

// DefaultConfigPath is read when no path is given; a missing file there is not an error.
const DefaultConfigPath = "projectprefs.yaml"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Disabled turns off the rate limit or the storage quota. Zero selects the default instead.
const Disabled = -1

// Config is the server and CLI configuration.
type Config struct {
	ListenAddress  string   `yaml:"listen_address"`
	LogLevel       string   `yaml:"log_level"`
	DefaultOrigin  string   `yaml:"default_origin"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// RateLimitPerMinute caps requests per client IP; Disabled turns the limit off.
	RateLimitPerMinute int     `yaml:"rate_limit_per_minute"`
	MessagesPath       string  `yaml:"messages_path"`
	Storage            Storage `yaml:"storage"`
}

// Storage selects and configures the preferences backend.
type Storage struct {
	Type          string `yaml:"type"`
	SQLitePath    string `yaml:"sqlite_path"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	// QuotaBytes is the per-origin byte budget; Disabled turns the check off.
	QuotaBytes int64 `yaml:"quota_bytes"`
}

// Load reads the configuration. An empty path falls back to $PROJECTPREFS_CONFIG,
// then to DefaultConfigPath. Only an explicitly named file is required to exist.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfigPath)
		explicit = path != ""
	}
	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: error parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv lets environment variables override YAML values.
func applyEnv(cfg *Config) error {
	envOverride(&cfg.ListenAddress, "PROJECTPREFS_LISTEN_ADDRESS")
	envOverride(&cfg.LogLevel, "PROJECTPREFS_LOG_LEVEL")
	envOverride(&cfg.DefaultOrigin, "PROJECTPREFS_DEFAULT_ORIGIN")
	envOverride(&cfg.MessagesPath, "PROJECTPREFS_MESSAGES_PATH")
	envOverride(&cfg.Storage.Type, "PROJECTPREFS_STORAGE_TYPE")
	envOverride(&cfg.Storage.SQLitePath, "PROJECTPREFS_SQLITE_PATH")
	envOverride(&cfg.Storage.PostgresDSN, "PROJECTPREFS_POSTGRES_DSN")
	envOverride(&cfg.Storage.RedisAddr, "PROJECTPREFS_REDIS_ADDR")
	envOverride(&cfg.Storage.RedisPassword, "PROJECTPREFS_REDIS_PASSWORD")

	if err := envOverrideInt(&cfg.RateLimitPerMinute, "PROJECTPREFS_RATE_LIMIT_PER_MINUTE"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.Storage.RedisDB, "PROJECTPREFS_REDIS_DB"); err != nil {
		return err
	}
	if v := os.Getenv("PROJECTPREFS_QUOTA_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: PROJECTPREFS_QUOTA_BYTES=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Storage.QuotaBytes = n
	}

	if origins := os.Getenv("PROJECTPREFS_ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.ListenAddress == "" {
		c.ListenAddress = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DefaultOrigin == "" {
		c.DefaultOrigin = "http://localhost:9000"
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 600
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "./projectprefs.db"
	}
	if c.Storage.RedisAddr == "" {
		c.Storage.RedisAddr = "localhost:6379"
	}
	if c.Storage.QuotaBytes == 0 {
		c.Storage.QuotaBytes = 5 * 1024 * 1024
	}
}

// Validate reports the first inconsistency in c.
func (c Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres storage requires postgres_dsn", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage type %q", ErrInvalidConfig, c.Storage.Type)
	}
	if c.Storage.QuotaBytes < Disabled {
		return fmt.Errorf("%w: quota_bytes must be positive, 0 for the default or -1 to disable", ErrInvalidConfig)
	}
	if c.RateLimitPerMinute < Disabled {
		return fmt.Errorf("%w: rate_limit_per_minute must be positive, 0 for the default or -1 to disable", ErrInvalidConfig)
	}
	if c.Storage.RedisDB < 0 {
		return fmt.Errorf("%w: redis_db must not be negative", ErrInvalidConfig)
	}
	return nil
}

func envOverride(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envOverrideInt(target *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
	}
	*target = n
	return nil
}
