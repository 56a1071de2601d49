package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "DATABASE_URL", "OVERUNDER_ENCRYPTION_KEY"} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("should default to a noop provider and a file store", func(t *testing.T) {
		clearEnv(t)
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), true)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AI.Provider != "noop" || cfg.Store.Driver != "file" || cfg.Log.Level != "info" || !cfg.Runtime.Dev {
			t.Fatalf("unexpected defaults: %+v", cfg)
		}
		if cfg.AI.MaxHistoryTokens != 12000 || cfg.AI.RequestTimeout != 0 {
			t.Fatalf("unexpected ai defaults: %+v", cfg.AI)
		}
	})

	t.Run("should pick the provider from the environment", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-test")
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AI.Provider != "openai" || cfg.AI.DefaultModel != "gpt-4o-mini" {
			t.Fatalf("unexpected ai config: %+v", cfg.AI)
		}
	})

	t.Run("should read yaml", func(t *testing.T) {
		clearEnv(t)
		path := writeConfig(t, `
log:
  level: debug
  format: console
ai:
  provider: gemini
  gemini_key: g-key
  enable_search: true
  request_timeout: 45s
  concurrent_limit: 2
store:
  driver: redis
  key_prefix: "ou:"
redis:
  url: redis://localhost:6379/0
persistence:
  async: true
admin:
  port: 9090
`)
		cfg, err := LoadConfig(path, false)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.AI.RequestTimeout != 45*time.Second || !cfg.AI.EnableSearch || cfg.AI.DefaultModel != "gemini-2.5-flash" {
			t.Fatalf("unexpected ai config: %+v", cfg.AI)
		}
		if cfg.Store.Driver != "redis" || cfg.Store.KeyPrefix != "ou:" || !cfg.Persistence.Async || cfg.Admin.Port != 9090 {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("should reject invalid combinations", func(t *testing.T) {
		clearEnv(t)
		for name, body := range map[string]string{
			"missing key":      "ai:\n  provider: gemini\n",
			"unknown provider": "ai:\n  provider: claude-ish\n",
			"unknown driver":   "store:\n  driver: sqlite\n",
			"postgres no url":  "store:\n  driver: postgres\n",
			"short enc key":    "security:\n  encryption_key: abc\n",
		} {
			if _, err := LoadConfig(writeConfig(t, body), false); err == nil {
				t.Errorf("%s: expected an error", name)
			}
		}
	})

	t.Run("should fail on malformed yaml", func(t *testing.T) {
		clearEnv(t)
		_, err := LoadConfig(writeConfig(t, "ai: [unclosed"), false)
		if err == nil || !strings.Contains(err.Error(), "parse config") {
			t.Fatalf("expected a parse error, got %v", err)
		}
	})
}

func TestStorePathDefaults(t *testing.T) {
	clearEnv(t)
	for driver, want := range map[string]string{"file": "overunder-data.json", "sqlite": "overunder.db"} {
		cfg, err := LoadConfig(writeConfig(t, "store:\n  driver: "+driver+"\n"), false)
		if err != nil {
			t.Fatalf("%s: %v", driver, err)
		}
		if cfg.Store.Path != want {
			t.Errorf("%s: path = %q, want %q", driver, cfg.Store.Path, want)
		}
	}
}
