package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. JOURNEY_SERVER_PORT.
const EnvPrefix = "JOURNEY_"

// Store drivers.
const (
	StoreFile  = "file"
	StoreRedis = "redis"
)

type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Store     StoreConfig     `yaml:"store" envPrefix:"STORE_"`
	Catalog   CatalogConfig   `yaml:"catalog" envPrefix:"CATALOG_"`
	Broadcast BroadcastConfig `yaml:"broadcast" envPrefix:"BROADCAST_"`
	Cache     CacheConfig     `yaml:"cache" envPrefix:"CACHE_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port           int      `yaml:"port" env:"PORT"`
	Host           string   `yaml:"host" env:"HOST"`
	AuthToken      string   `yaml:"auth_token" env:"AUTH_TOKEN"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
	// MaxPathLevels bounds /api/journey range queries.
	MaxPathLevels int `yaml:"max_path_levels" env:"MAX_PATH_LEVELS"`
}

// StoreConfig selects where player progress lives.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	// Dir holds one JSON file per player for the file driver. Empty means
	// the XDG state directory.
	Dir           string        `yaml:"dir" env:"DIR"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	KeyPrefix     string        `yaml:"key_prefix" env:"KEY_PREFIX"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
}

// CatalogConfig points at an optional YAML catalog replacing the built-in
// realms, templates and selector policy.
type CatalogConfig struct {
	Path string `yaml:"path" env:"PATH"`
}

type BroadcastConfig struct {
	Throttle   time.Duration `yaml:"throttle" env:"THROTTLE"`
	MaxClients int           `yaml:"max_clients" env:"MAX_CLIENTS"`
}

// CacheConfig controls memoisation of journey levels. A zero TTL keeps
// entries forever, which is safe because levels are pure functions of the
// catalog.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8080,
			Host:          "127.0.0.1",
			MaxPathLevels: 100,
		},
		Store: StoreConfig{
			Driver:    StoreFile,
			RedisAddr: "localhost:6379",
			KeyPrefix: "journey:progress:",
			TTL:       90 * 24 * time.Hour,
		},
		Broadcast: BroadcastConfig{
			Throttle:   100 * time.Millisecond,
			MaxClients: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Default returns the built-in configuration with environment overrides
// applied.
func Default() (*Config, error) {
	cfg := defaultConfig()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	return cfg, err
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.MaxPathLevels < 1 {
		return fmt.Errorf("invalid server.max_path_levels: %d (must be positive)", c.Server.MaxPathLevels)
	}
	switch c.Store.Driver {
	case StoreFile:
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q (want %q or %q)", c.Store.Driver, StoreFile, StoreRedis)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("invalid store.ttl: %v", c.Store.TTL)
	}
	if c.Broadcast.Throttle <= 0 {
		return fmt.Errorf("invalid broadcast.throttle: %v", c.Broadcast.Throttle)
	}
	if c.Broadcast.MaxClients < 1 {
		return fmt.Errorf("invalid broadcast.max_clients: %d", c.Broadcast.MaxClients)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log.format %q (want json or text)", c.Log.Format)
	}
	return nil
}
