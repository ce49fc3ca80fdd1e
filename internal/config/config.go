// Package config loads CLI configuration from a YAML file, a .env file and
// YTDATA_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/client"
	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. YTDATA_API_KEY.
const EnvPrefix = "YTDATA"

type Config struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PageDelay   time.Duration `mapstructure:"page_delay"`
	Retry       RetryConfig   `mapstructure:"retry"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
	Log         LogConfig     `mapstructure:"log"`
	Redis       RedisConfig   `mapstructure:"redis"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

type BreakerConfig struct {
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
	OpenTimeout         time.Duration `mapstructure:"open_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// RedisConfig enables the shared quota guard when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Load reads configuration. An empty configPath looks for config.yaml in
// ./configs and the working directory; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The unprefixed name is what most tooling exports
	if err := v.BindEnv("api_key", EnvPrefix+"_API_KEY", "YOUTUBE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api key env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	clientDefaults := client.DefaultConfig("")

	v.SetDefault("api_key", "")
	v.SetDefault("base_url", clientDefaults.BaseURL)
	v.SetDefault("timeout", clientDefaults.Timeout)
	v.SetDefault("page_delay", pagination.DefaultConfig().PageDelay)
	v.SetDefault("retry.max_attempts", clientDefaults.Retry.MaxAttempts)
	v.SetDefault("retry.initial_backoff", clientDefaults.Retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", clientDefaults.Retry.MaxBackoff)
	v.SetDefault("breaker.consecutive_failures", clientDefaults.Breaker.ConsecutiveFailures)
	v.SetDefault("breaker.open_timeout", clientDefaults.Breaker.OpenTimeout)
	v.SetDefault("log.level", string(logging.LevelInfo))
	v.SetDefault("log.pretty", false)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics_addr", "")
}

// Validate reports settings the client cannot work with.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (set %s_API_KEY or YOUTUBE_API_KEY)", EnvPrefix)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", c.Timeout)
	}
	if c.PageDelay < 0 {
		return fmt.Errorf("page_delay must not be negative (got %s)", c.PageDelay)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1 (got %d)", c.Retry.MaxAttempts)
	}
	return nil
}

// ClientConfig maps the settings onto a client configuration. The quota
// guard is wired separately because it needs a redis connection.
func (c *Config) ClientConfig() client.Config {
	cfg := client.DefaultConfig(c.APIKey)
	cfg.BaseURL = c.BaseURL
	cfg.Timeout = c.Timeout
	cfg.Retry.MaxAttempts = c.Retry.MaxAttempts
	cfg.Retry.InitialBackoff = c.Retry.InitialBackoff
	cfg.Retry.MaxBackoff = c.Retry.MaxBackoff
	cfg.Breaker = client.BreakerConfig{
		ConsecutiveFailures: c.Breaker.ConsecutiveFailures,
		OpenTimeout:         c.Breaker.OpenTimeout,
	}
	return cfg
}

// PaginationConfig maps the settings onto a paginator configuration.
func (c *Config) PaginationConfig() pagination.Config {
	cfg := pagination.DefaultConfig()
	cfg.PageDelay = c.PageDelay
	return cfg
}

// LoggingConfig maps the settings onto a logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}
