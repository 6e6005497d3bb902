// Package config loads the arbor server configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the server configuration.
type Config struct {
	Listen        string        `mapstructure:"listen"`
	MetricsListen string        `mapstructure:"metrics_listen"`
	LogLevel      string        `mapstructure:"log_level"`
	Session       SessionConfig `mapstructure:"session"`
	Pages         PagesConfig   `mapstructure:"pages"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

// SessionConfig bounds live sessions.
type SessionConfig struct {
	TTL      time.Duration `mapstructure:"ttl"`
	Lifetime time.Duration `mapstructure:"lifetime"`
	Capacity int           `mapstructure:"capacity"`
}

// PagesConfig bounds the page history of each session.
type PagesConfig struct {
	Capacity int           `mapstructure:"capacity"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// RedisConfig enables distributed locking and the session index when Addr is set.
type RedisConfig struct {
	Addr    string        `mapstructure:"addr"`
	Prefix  string        `mapstructure:"prefix"`
	LockTTL time.Duration `mapstructure:"lock_ttl"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:        ":8080",
		MetricsListen: ":2112",
		LogLevel:      "info",
		Session: SessionConfig{
			TTL:      30 * time.Minute,
			Capacity: 10000,
		},
		Pages: PagesConfig{
			Capacity: 20,
		},
		Redis: RedisConfig{
			Prefix:  "arbor:",
			LockTTL: 30 * time.Second,
		},
	}
}

// Load reads a YAML file over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data, cfg)
}

// Parse decodes YAML into base. Durations accept Go syntax ("90s", "15m").
func Parse(data []byte, base Config) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := base
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return base, err
	}
	if err := decoder.Decode(raw); err != nil {
		return base, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("invalid config: listen address is required")
	}
	if c.Session.Capacity <= 0 {
		return fmt.Errorf("invalid config: session.capacity must be positive")
	}
	if c.Pages.Capacity <= 0 {
		return fmt.Errorf("invalid config: pages.capacity must be positive")
	}
	if c.Session.TTL < 0 || c.Session.Lifetime < 0 || c.Pages.TTL < 0 {
		return fmt.Errorf("invalid config: durations must not be negative")
	}
	return nil
}
