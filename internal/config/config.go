package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API    APIConfig
	Retry  RetryConfig
	Cache  CacheConfig
	Output OutputConfig
	Log    LogConfig
}

// APIConfig holds committee API settings.
type APIConfig struct {
	Endpoint    string
	Method      string
	APIKeyEnv   string `mapstructure:"api_key_env"`
	APIKey      string `mapstructure:"api_key"`
	PageSize    int    `mapstructure:"page_size"`
	Timeout     time.Duration
	Concurrency int
}

// RetryConfig controls backoff for transient API failures.
type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts"`
	BaseDelay     time.Duration `mapstructure:"base_delay"`
	BackoffFactor float64       `mapstructure:"backoff_factor"`
}

// CacheConfig holds sqlite snapshot cache settings.
type CacheConfig struct {
	Path string
}

// OutputConfig controls where report artifacts are written.
type OutputConfig struct {
	Dir string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
	JSON  bool
}

// Load reads configuration from file and env. Env var overrides use prefix PACFRAG_.
// An explicit path wins over PACFRAG_CONFIG and the default location.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("PACFRAG_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "pacfrag"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("PACFRAG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// a missing default file is fine; a named file must exist
		if !errors.As(err, &notFound) || path != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.endpoint", "http://api.nytimes.com/svc/elections/us/v3/finances/2012")
	v.SetDefault("api.method", "/committees/superpacs.json")
	v.SetDefault("api.api_key_env", "NYTCF_API_KEY")
	v.SetDefault("api.api_key", "")
	v.SetDefault("api.page_size", 20)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.concurrency", 4)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.base_delay", time.Second)
	v.SetDefault("retry.backoff_factor", 2.0)
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "pacfrag", "pacfrag.db"))
	v.SetDefault("output.dir", ".")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Validate rejects settings the fetcher cannot run with.
func (c Config) Validate() error {
	switch {
	case c.API.PageSize <= 0:
		return fmt.Errorf("config: api.page_size must be positive, got %d", c.API.PageSize)
	case c.API.Concurrency <= 0:
		return fmt.Errorf("config: api.concurrency must be positive, got %d", c.API.Concurrency)
	case c.Retry.MaxAttempts <= 0:
		return fmt.Errorf("config: retry.max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	case c.Retry.BackoffFactor < 1:
		return fmt.Errorf("config: retry.backoff_factor must be at least 1, got %g", c.Retry.BackoffFactor)
	case c.Retry.BaseDelay < 0:
		return fmt.Errorf("config: retry.base_delay must not be negative")
	}
	return nil
}

// APIKey resolves the API key: the named env var first, then the file value.
func (c Config) APIKey() string {
	if env := strings.TrimSpace(c.API.APIKeyEnv); env != "" {
		if v := os.Getenv(env); v != "" {
			return v
		}
	}
	return strings.TrimSpace(c.API.APIKey)
}

// ResolvePath returns the file Save writes to: path, else PACFRAG_CONFIG,
// else ~/.config/pacfrag/config.toml.
func ResolvePath(path string) string {
	if path == "" {
		path = os.Getenv("PACFRAG_CONFIG")
	}
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "pacfrag", "config.toml")
	}
	return path
}

// Save writes the provided config to path, creating the directory if needed.
// The API key is written as-is; prefer the env var.
func Save(cfg Config, path string) error {
	path = ResolvePath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.endpoint", cfg.API.Endpoint)
	v.Set("api.method", cfg.API.Method)
	v.Set("api.api_key_env", cfg.API.APIKeyEnv)
	v.Set("api.api_key", cfg.API.APIKey)
	v.Set("api.page_size", cfg.API.PageSize)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.concurrency", cfg.API.Concurrency)
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.Set("retry.base_delay", cfg.Retry.BaseDelay.String())
	v.Set("retry.backoff_factor", cfg.Retry.BackoffFactor)
	v.Set("cache.path", cfg.Cache.Path)
	v.Set("output.dir", cfg.Output.Dir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.json", cfg.Log.JSON)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
