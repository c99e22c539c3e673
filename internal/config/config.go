// Package config loads the typed service configuration. Configuration
// is resolved once at startup from a YAML file plus environment
// overrides, and invalid values fail fast rather than being defaulted
// per call site.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreEtcd     = "etcd"
	StorePostgres = "postgres"
)

// Config is the complete service configuration.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Store        StoreConfig        `yaml:"store"`
	Conversation ConversationConfig `yaml:"conversation"`
	Generation   GenerationConfig   `yaml:"generation"`
	Archive      ArchiveConfig      `yaml:"archive"`
}

// StoreConfig selects and configures the conversation store backend.
type StoreConfig struct {
	Kind          string   `yaml:"kind"`
	EtcdEndpoints []string `yaml:"etcd_endpoints"`
	PostgresURL   string   `yaml:"postgres_url"`
	// SweepSchedule is a cron expression for the in-memory store's
	// expired-entry sweep. Ignored by other backends.
	SweepSchedule string `yaml:"sweep_schedule"`
}

// ConversationConfig bounds conversation state.
type ConversationConfig struct {
	MaxTurns         int `yaml:"max_turns"`
	TTLSeconds       int `yaml:"ttl_seconds"`
	MaxMessageLength int `yaml:"max_message_length"`
}

// GenerationConfig configures the external generation path. An empty
// Model disables it; the engine then runs entirely on the fallback
// path.
type GenerationConfig struct {
	Model          string  `yaml:"model"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
}

// ArchiveConfig configures transcript archival. An empty bucket
// disables it.
type ArchiveConfig struct {
	S3Bucket string `yaml:"s3_bucket"`
	S3Prefix string `yaml:"s3_prefix"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		LogLevel: "info",
		Store: StoreConfig{
			Kind:          StoreMemory,
			SweepSchedule: "@every 5m",
		},
		Conversation: ConversationConfig{
			MaxTurns:         10,
			TTLSeconds:       3600,
			MaxMessageLength: 2000,
		},
		Generation: GenerationConfig{
			MaxTokens:      300,
			Temperature:    0.7,
			TimeoutSeconds: 30,
		},
	}
}

// Load resolves the configuration: defaults, then the YAML file at
// path (skipped when path is empty), then environment overrides, then
// validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("KONTRA_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("KONTRA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("KONTRA_STORE"); v != "" {
		c.Store.Kind = v
	}
	if v := os.Getenv("KONTRA_ETCD_ENDPOINTS"); v != "" {
		c.Store.EtcdEndpoints = strings.Split(v, ",")
	}
	if v := os.Getenv("KONTRA_POSTGRES_URL"); v != "" {
		c.Store.PostgresURL = v
	}
	if v := os.Getenv("KONTRA_MODEL"); v != "" {
		c.Generation.Model = v
	}
	if v := os.Getenv("KONTRA_S3_BUCKET"); v != "" {
		c.Archive.S3Bucket = v
	}
	if v := os.Getenv("KONTRA_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Conversation.TTLSeconds = n
		}
	}
	if v := os.Getenv("KONTRA_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Conversation.MaxTurns = n
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory:
	case StoreEtcd:
		if len(c.Store.EtcdEndpoints) == 0 {
			return fmt.Errorf("config: etcd store requires etcd_endpoints")
		}
	case StorePostgres:
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("config: postgres store requires postgres_url")
		}
	default:
		return fmt.Errorf("config: unknown store kind %q", c.Store.Kind)
	}

	if c.Conversation.TTLSeconds < 60 {
		return fmt.Errorf("config: ttl_seconds must be at least 60, got %d", c.Conversation.TTLSeconds)
	}
	if c.Conversation.MaxTurns < 2 || c.Conversation.MaxTurns%2 != 0 {
		return fmt.Errorf("config: max_turns must be an even number >= 2, got %d", c.Conversation.MaxTurns)
	}
	if c.Conversation.MaxMessageLength < 10 {
		return fmt.Errorf("config: max_message_length must be at least 10, got %d", c.Conversation.MaxMessageLength)
	}
	if c.Generation.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: timeout_seconds must be positive, got %d", c.Generation.TimeoutSeconds)
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("config: temperature must be in [0, 2], got %v", c.Generation.Temperature)
	}
	return nil
}

// TTL returns the conversation expiry window as a duration.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Conversation.TTLSeconds) * time.Second
}

// GenerationTimeout returns the external-generation timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSeconds) * time.Second
}
