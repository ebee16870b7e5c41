package config_test

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/firasghr/httpengine/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if cfg.NumberOfSessions <= 0 {
		t.Errorf("NumberOfSessions should be > 0, got %d", cfg.NumberOfSessions)
	}
	if cfg.RequestTimeout <= 0 {
		t.Errorf("RequestTimeout should be > 0, got %v", cfg.RequestTimeout)
	}
	if cfg.MaxRetries <= 0 {
		t.Errorf("MaxRetries should be > 0, got %d", cfg.MaxRetries)
	}
	if cfg.MaxIdleConns <= 0 {
		t.Errorf("MaxIdleConns should be > 0, got %d", cfg.MaxIdleConns)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	raw := map[string]interface{}{
		"number_of_sessions":    10,
		"request_timeout":       int64(30 * time.Second),
		"max_retries":           3,
		"target_url":            "http://example.com",
		"proxy_file":            "",
		"max_idle_conns":        100,
		"max_idle_conns_per_host": 20,
		"max_conns_per_host":    50,
	}
	f, err := os.CreateTemp(t.TempDir(), "config*.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.NewEncoder(f).Encode(raw); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumberOfSessions != 10 {
		t.Errorf("got NumberOfSessions=%d, want 10", cfg.NumberOfSessions)
	}
	if cfg.TargetURL != "http://example.com" {
		t.Errorf("got TargetURL=%q, want http://example.com", cfg.TargetURL)
	}
}

func TestLoadConfigYAML_ValidFile(t *testing.T) {
	raw := fmt.Sprintf("number_of_sessions: 25\ntarget_url: http://example.com\ncache_ttl: %d\ncache_size: 512\nrate_limit_per_second: 5\n", int64(30*time.Second))
	f, err := os.CreateTemp(t.TempDir(), "config*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(raw); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg, err := config.LoadConfigYAML(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.NumberOfSessions != 25 {
		t.Errorf("got NumberOfSessions=%d, want 25", cfg.NumberOfSessions)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("got CacheTTL=%v, want 30s", cfg.CacheTTL)
	}
	if cfg.CacheSize != 512 {
		t.Errorf("got CacheSize=%d, want 512", cfg.CacheSize)
	}
}

func TestLoadConfigYAML_MissingFile(t *testing.T) {
	_, err := config.LoadConfigYAML("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := config.LoadConfig("/nonexistent/path/config.json")
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "bad*.json")
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString("{not valid json}")
	f.Close()

	_, err = config.LoadConfig(f.Name())
	if err == nil {
		t.Error("expected error for invalid JSON, got nil")
	}
}
