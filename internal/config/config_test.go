package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Cluster.Endpoint != "https://api.devnet.xandeum.com:8899" {
		t.Fatalf("endpoint = %q", cfg.Cluster.Endpoint)
	}
	if cfg.Cluster.PollInterval != 30*time.Second {
		t.Fatalf("poll interval = %v", cfg.Cluster.PollInterval)
	}
	if cfg.Store.Backend != "bolt" {
		t.Fatalf("backend = %q", cfg.Store.Backend)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
env: production
server:
  port: 9090
cluster:
  endpoint: http://localhost:8899
  poll_interval: 10s
store:
  backend: memory
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.Server.Port != 9090 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Cluster.PollInterval != 10*time.Second {
		t.Fatalf("poll interval = %v", cfg.Cluster.PollInterval)
	}
	// Unset file fields keep their defaults.
	if cfg.Cluster.Timeout != 3*time.Second {
		t.Fatalf("timeout = %v", cfg.Cluster.Timeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("XANDALYZE_RPC_URL", "http://rpc.example:8899")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("port = %d", cfg.Server.Port)
	}
	if cfg.Cluster.Endpoint != "http://rpc.example:8899" {
		t.Fatalf("endpoint = %q", cfg.Cluster.Endpoint)
	}
	if cfg.AI.GeminiAPIKey != "g-key" {
		t.Fatalf("gemini key = %q", cfg.AI.GeminiAPIKey)
	}
}

func TestLoad_GoogleKeyWinsOverGeminiKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AI.GeminiAPIKey != "google-key" {
		t.Fatalf("gemini key = %q", cfg.AI.GeminiAPIKey)
	}
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad env", func(c *Config) { c.Env = "qa" }},
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no endpoint", func(c *Config) { c.Cluster.Endpoint = "" }},
		{"bad backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis" }},
	}
	for _, tc := range cases {
		cfg := defaults()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: validation passed", tc.name)
		}
	}
}
