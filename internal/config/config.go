// Package config loads the server configuration from YAML, with
// defaults pre-filled so a missing or partial file still yields a
// runnable setup. Secrets come from the environment, not the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Guidance GuidanceConfig `yaml:"guidance"`
	Session  SessionConfig  `yaml:"session"`
	Shop     ShopConfig     `yaml:"shop"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the persistence backend. Backend is one of
// "memory", "file" or "sqlite".
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	Dir        string `yaml:"dir"`         // file backend; empty means the XDG state dir
	SQLitePath string `yaml:"sqlite_path"` // sqlite backend
}

type GuidanceConfig struct {
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type ShopConfig struct {
	SuccessRate float64       `yaml:"success_rate"`
	SettleDelay time.Duration `yaml:"settle_delay"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Guidance: GuidanceConfig{
			Model:   "gpt-4o-mini",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			TickInterval: time.Second,
		},
		Shop: ShopConfig{
			SuccessRate: 0.95,
			SettleDelay: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads and validates the config at path. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults
// instead of an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return cfg, err
}

// ApplyEnv overlays environment variables on the loaded config.
// OPENAI_API_KEY and PORT win over the file so deployments never need
// secrets in YAML.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Guidance.APIKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// Validate rejects configs that cannot be wired.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "sqlite" && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite backend needs storage.sqlite_path")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Shop.SuccessRate < 0 || c.Shop.SuccessRate > 1 {
		return fmt.Errorf("shop success_rate must be within [0, 1], got %v", c.Shop.SuccessRate)
	}
	return nil
}
