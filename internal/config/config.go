// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/deusflow/newsgate/internal/provider"
)

type Config struct {
	// HTTP server
	ListenAddr  string
	CORSEnabled bool

	// Aggregation settings
	ProvidersConfigPath string
	DefaultSource       string
	DefaultKeyword      string
	SampleSize          int
	ProviderTimeout     time.Duration

	// Content extraction settings
	ExtractTimeout  time.Duration
	MaxContentRunes int

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		ListenAddr:          ":8080",
		CORSEnabled:         true,
		ProvidersConfigPath: "configs/providers.yaml",
		DefaultSource:       "bing",
		DefaultKeyword:      "财经",
		SampleSize:          10,
		ProviderTimeout:     provider.DefaultTimeout,
		ExtractTimeout:      10 * time.Second,
		MaxContentRunes:     50000,
	}

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	if v := os.Getenv("CORS_ENABLED"); v == "false" {
		cfg.CORSEnabled = false
	}

	cfg.ProvidersConfigPath = getEnvOrDefault("PROVIDERS_CONFIG_PATH", cfg.ProvidersConfigPath)
	cfg.DefaultSource = getEnvOrDefault("DEFAULT_SOURCE", cfg.DefaultSource)
	cfg.DefaultKeyword = getEnvOrDefault("DEFAULT_KEYWORD", cfg.DefaultKeyword)
	cfg.SampleSize = getEnvIntOrDefault("SAMPLE_SIZE", cfg.SampleSize)
	cfg.MaxContentRunes = getEnvIntOrDefault("MAX_CONTENT_RUNES", cfg.MaxContentRunes)

	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ProviderTimeout = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("EXTRACT_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ExtractTimeout = time.Duration(val) * time.Second
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR must not be empty")
	}
	if c.SampleSize <= 0 {
		return fmt.Errorf("SAMPLE_SIZE must be positive")
	}
	if c.MaxContentRunes <= 0 {
		return fmt.Errorf("MAX_CONTENT_RUNES must be positive")
	}
	if c.ProviderTimeout <= 0 || c.ExtractTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}
