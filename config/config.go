// Package config loads toolkit configuration from an optional config file
// and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the toolkit.
type Config struct {
	CatchAll CatchAllConfig `mapstructure:"catchall"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Session  SessionConfig  `mapstructure:"session"`
	Reports  ReportsConfig  `mapstructure:"reports"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
}

// CatchAllConfig configures the CatchAll API client and its polling policy.
type CatchAllConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Poll    PollConfig    `mapstructure:"poll"`
}

// PollConfig mirrors the documented streaming convention: a grace period
// after submit, a fixed interval between pulls, and an attempt budget.
type PollConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay"`
	Interval     time.Duration `mapstructure:"interval"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// LLMConfig selects and parameterises the LLM provider.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // anthropic, openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SessionConfig selects the chat session store backend.
type SessionConfig struct {
	Backend string        `mapstructure:"backend"` // inmemory, redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr renders the host:port pair go-redis expects.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ReportsConfig configures where finished reports are written.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// WebhookConfig configures the monitor webhook receiver.
type WebhookConfig struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from catchall_config.{json,yaml} (when present)
// and the environment. Credentials are only validated where they are needed,
// so read-only commands work without an LLM key.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("catchall_config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("CATCHALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	overrideFromEnv(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catchall.base_url", "https://catchall.newscatcherapi.com")
	v.SetDefault("catchall.timeout", "60s")
	v.SetDefault("catchall.poll.initial_delay", "30s")
	v.SetDefault("catchall.poll.interval", "60s")
	v.SetDefault("catchall.poll.max_attempts", 15)

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.3)
	v.SetDefault("llm.timeout", "120s")

	v.SetDefault("session.backend", "inmemory")
	v.SetDefault("session.ttl", "1h")
	v.SetDefault("session.redis.host", "localhost")
	v.SetDefault("session.redis.port", 6379)
	v.SetDefault("session.redis.db", 0)

	v.SetDefault("reports.dir", "reports")
	v.SetDefault("webhook.addr", ":8085")
}

// overrideFromEnv maps the well-known credential variables onto config keys.
func overrideFromEnv(v *viper.Viper) {
	if key := os.Getenv("CATCHALL_API_KEY"); key != "" {
		v.Set("catchall.api_key", key)
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && v.GetString("llm.provider") == "anthropic" {
		v.Set("llm.api_key", key)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && v.GetString("llm.provider") == "openai" {
		v.Set("llm.api_key", key)
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		v.Set("session.redis.host", host)
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			v.Set("session.redis.port", p)
		}
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		v.Set("session.redis.password", password)
	}
}
