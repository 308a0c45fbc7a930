package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Cache struct {
		Backend       string `yaml:"backend"` // memory, redis, layered
		MemoryMaxSize int    `yaml:"memory_max_size"`
		Redis         struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Holdings struct {
		Path string `yaml:"path"`
	} `yaml:"holdings"`
	Providers struct {
		Yahoo struct {
			BaseURL     string        `yaml:"base_url"`
			Timeout     time.Duration `yaml:"timeout"`
			MinInterval time.Duration `yaml:"min_interval"`
		} `yaml:"yahoo"`
		CoinGecko struct {
			BaseURL     string        `yaml:"base_url"`
			Timeout     time.Duration `yaml:"timeout"`
			MinInterval time.Duration `yaml:"min_interval"`
		} `yaml:"coingecko"`
		RetryWait time.Duration `yaml:"retry_wait"`
	} `yaml:"providers"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("HOLDINGS_PATH"); v != "" {
		c.Holdings.Path = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		c.Providers.Yahoo.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.Providers.CoinGecko.BaseURL = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	case "":
		return fmt.Errorf("cache.backend is required")
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	if c.Holdings.Path == "" {
		return fmt.Errorf("holdings.path is required")
	}
	if c.Providers.Yahoo.BaseURL == "" {
		return fmt.Errorf("providers.yahoo.base_url is required")
	}
	if c.Providers.CoinGecko.BaseURL == "" {
		return fmt.Errorf("providers.coingecko.base_url is required")
	}
	if c.Providers.CoinGecko.MinInterval < 0 || c.Providers.Yahoo.MinInterval < 0 {
		return fmt.Errorf("provider min_interval cannot be negative")
	}
	return nil
}
