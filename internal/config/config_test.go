package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		"MARKETBRIEF_TWITTER_BEARER_TOKEN",
		"MARKETBRIEF_ECONOMIC_CLIENT",
		"MARKETBRIEF_ECONOMIC_SECRET",
	} {
		os.Unsetenv(e)
	}
}

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.HTTP.TimeoutSec != 30 {
		t.Errorf("HTTP.TimeoutSec: got %d, want 30", cfg.HTTP.TimeoutSec)
	}
	if cfg.Economic.Client != "guest" || cfg.Economic.Secret != "guest" {
		t.Errorf("Economic credentials should default to guest:guest, got %s:%s",
			cfg.Economic.Client, cfg.Economic.Secret)
	}
	if cfg.Twitter.BearerToken != "" {
		t.Errorf("Twitter.BearerToken should default empty, got %q", cfg.Twitter.BearerToken)
	}
	if cfg.Twitter.MaxResults != 10 {
		t.Errorf("Twitter.MaxResults: got %d, want 10", cfg.Twitter.MaxResults)
	}
	if cfg.Reddit.Limit != 5 {
		t.Errorf("Reddit.Limit: got %d, want 5", cfg.Reddit.Limit)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging defaults wrong: %+v", cfg.Logging)
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("MARKETBRIEF_TWITTER_BEARER_TOKEN", "env-token")
	t.Setenv("MARKETBRIEF_ECONOMIC_CLIENT", "paid-client")
	t.Setenv("MARKETBRIEF_ECONOMIC_SECRET", "paid-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Twitter.BearerToken != "env-token" {
		t.Errorf("bearer token not taken from env: %q", cfg.Twitter.BearerToken)
	}
	if cfg.Economic.Client != "paid-client" || cfg.Economic.Secret != "paid-secret" {
		t.Errorf("economic credentials not taken from env: %s:%s",
			cfg.Economic.Client, cfg.Economic.Secret)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
http:
  timeout_sec: 10
economic:
  client: fileclient
twitter:
  bearer_token: filetoken
  max_results: 25
reddit:
  limit: 3
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.HTTP.TimeoutSec != 10 {
		t.Errorf("HTTP.TimeoutSec: got %d, want 10", cfg.HTTP.TimeoutSec)
	}
	if cfg.Economic.Client != "fileclient" {
		t.Errorf("Economic.Client: got %q", cfg.Economic.Client)
	}
	// Unset keys keep their defaults.
	if cfg.Economic.Secret != "guest" {
		t.Errorf("Economic.Secret should keep default, got %q", cfg.Economic.Secret)
	}
	if cfg.Twitter.BearerToken != "filetoken" || cfg.Twitter.MaxResults != 25 {
		t.Errorf("Twitter config wrong: %+v", cfg.Twitter)
	}
	if cfg.Reddit.Limit != 3 {
		t.Errorf("Reddit.Limit: got %d, want 3", cfg.Reddit.Limit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q", cfg.Logging.Level)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
