package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	ExchangeAPI ExchangeAPIConfig `yaml:"exchange_api"`
	Cache       CacheConfig       `yaml:"cache"`
	Converter   ConverterConfig   `yaml:"converter"`
	Log         LogConfig         `yaml:"log"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
}

type ExchangeAPIConfig struct {
	BaseURL     string        `yaml:"base_url" env:"EXCHANGE_API_BASE_URL" env-default:"https://api.exchangerate.host"`
	APIKey      string        `yaml:"api_key" env:"EXCHANGE_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"EXCHANGE_API_TIMEOUT" env-default:"10s"`
	ListPath    string        `yaml:"list_path" env:"EXCHANGE_API_LIST_PATH" env-default:"/list"`
	QuotesPath  string        `yaml:"quotes_path" env:"EXCHANGE_API_QUOTES_PATH" env-default:"/live"`
	ConvertPath string        `yaml:"convert_path" env:"EXCHANGE_API_CONVERT_PATH" env-default:"/convert"`
}

// CacheConfig controls the rate table cache. A zero TTL keeps tables for the
// lifetime of the process.
type CacheConfig struct {
	Backend       string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"`
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"0s"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"CACHE_SWEEP_INTERVAL" env-default:"1h"`
	BadgerPath    string        `yaml:"badger_path" env:"CACHE_BADGER_PATH" env-default:"./data/rates"`
}

type ConverterConfig struct {
	Concurrency int `yaml:"concurrency" env:"CONVERTER_CONCURRENCY" env-default:"4"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// LoadConfig reads an optional .env file, then the YAML file named by
// CONFIG_PATH if set, with environment variables taking precedence.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.ExchangeAPI.BaseURL == "" {
		return fmt.Errorf("exchange API base URL is required")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendBadger:
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache TTL must not be negative: %s", c.Cache.TTL)
	}
	if c.Converter.Concurrency <= 0 {
		return fmt.Errorf("converter concurrency must be positive: %d", c.Converter.Concurrency)
	}
	return nil
}
