package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DefaultSource != "bing" || cfg.DefaultKeyword != "财经" {
		t.Errorf("defaults = %q / %q", cfg.DefaultSource, cfg.DefaultKeyword)
	}
	if cfg.SampleSize != 10 {
		t.Errorf("SampleSize = %d", cfg.SampleSize)
	}
	if cfg.ProviderTimeout != 8*time.Second || cfg.ExtractTimeout != 10*time.Second {
		t.Errorf("timeouts = %v / %v", cfg.ProviderTimeout, cfg.ExtractTimeout)
	}
	if cfg.MaxContentRunes != 50000 {
		t.Errorf("MaxContentRunes = %d", cfg.MaxContentRunes)
	}
	if !cfg.CORSEnabled {
		t.Error("CORS should default on")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_SOURCE", "weibo")
	t.Setenv("SAMPLE_SIZE", "5")
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "3")
	t.Setenv("CORS_ENABLED", "false")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DefaultSource != "weibo" {
		t.Errorf("DefaultSource = %q", cfg.DefaultSource)
	}
	if cfg.SampleSize != 5 {
		t.Errorf("SampleSize = %d", cfg.SampleSize)
	}
	if cfg.ProviderTimeout != 3*time.Second {
		t.Errorf("ProviderTimeout = %v", cfg.ProviderTimeout)
	}
	if cfg.CORSEnabled {
		t.Error("CORS_ENABLED=false not honored")
	}
	if !cfg.Debug {
		t.Error("DEBUG=true not honored")
	}
}

func TestLoadIgnoresBadInts(t *testing.T) {
	t.Setenv("SAMPLE_SIZE", "not-a-number")
	t.Setenv("MAX_CONTENT_RUNES", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SampleSize != 10 || cfg.MaxContentRunes != 50000 {
		t.Errorf("bad env ints should keep defaults, got %d / %d", cfg.SampleSize, cfg.MaxContentRunes)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		ListenAddr:      ":8080",
		SampleSize:      10,
		MaxContentRunes: 50000,
		ProviderTimeout: time.Second,
		ExtractTimeout:  time.Second,
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.SampleSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero sample size accepted")
	}
}
