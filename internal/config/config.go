package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort       = 2333
	defaultEnv        = "development"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "notevault"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379

	defaultQuotaMaxCalls    = 20
	defaultQuotaWindow      = time.Hour
	defaultCacheTTL         = 24 * time.Hour
	defaultCacheCapacity    = 4096
	defaultRequestTimeout   = 10 * time.Second
	defaultMaxRetries       = 2
	defaultRetryBackoff     = 500 * time.Millisecond
	defaultMaxTokens        = 300
	defaultBatchConcurrency = 5
)

// Load reads and validates the YAML config file at path.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %q: %w", path, err)
	}

	if err := validate(&cfg, path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *AppConfig, path string) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d in %q, expected 1-65535", cfg.Port, path)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d in %q, expected 1-65535", cfg.Database.Port, path)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d in %q, expected 1-65535", cfg.Redis.Port, path)
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d in %q, expected >= 0", cfg.Redis.DB, path)
	}
	if cfg.AI.QuotaMaxCalls < 1 {
		return fmt.Errorf("invalid ai.quota_max_calls %d in %q, expected >= 1", cfg.AI.QuotaMaxCalls, path)
	}
	if cfg.AI.QuotaWindow <= 0 {
		return fmt.Errorf("invalid ai.quota_window %s in %q, expected > 0", cfg.AI.QuotaWindow, path)
	}
	if cfg.AI.CacheCapacity < 1 {
		return fmt.Errorf("invalid ai.cache_capacity %d in %q, expected >= 1", cfg.AI.CacheCapacity, path)
	}
	if cfg.AI.MaxRetries < 0 {
		return fmt.Errorf("invalid ai.max_retries %d in %q, expected >= 0", cfg.AI.MaxRetries, path)
	}
	if cfg.AI.BatchConcurrency < 1 {
		return fmt.Errorf("invalid ai.batch_concurrency %d in %q, expected >= 1", cfg.AI.BatchConcurrency, path)
	}
	return nil
}

// Default returns the built-in configuration defaults.
func Default() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
			Loc:      defaultDBLoc,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		AI: AIConfig{
			Providers:        []AIProvider{},
			EnableSummary:    true,
			MaxTokens:        defaultMaxTokens,
			QuotaMaxCalls:    defaultQuotaMaxCalls,
			QuotaWindow:      Duration(defaultQuotaWindow),
			CacheTTL:         Duration(defaultCacheTTL),
			CacheCapacity:    defaultCacheCapacity,
			RequestTimeout:   Duration(defaultRequestTimeout),
			MaxRetries:       defaultMaxRetries,
			RetryBackoff:     Duration(defaultRetryBackoff),
			BatchConcurrency: defaultBatchConcurrency,
		},
	}
}

// DSN builds the MySQL data source name.
func (c *AppConfig) DSN() string {
	d := c.Database
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.Charset, d.Loc)
}

// RedisURL builds the Redis connection URL unless one is set explicitly.
func (c *AppConfig) RedisURL() string {
	r := c.Redis
	if strings.TrimSpace(r.URL) != "" {
		return r.URL
	}
	auth := ""
	if r.Username != "" || r.Password != "" {
		auth = fmt.Sprintf("%s:%s@", r.Username, r.Password)
	}
	return fmt.Sprintf("redis://%s%s:%d/%d", auth, r.Host, r.Port, r.DB)
}
