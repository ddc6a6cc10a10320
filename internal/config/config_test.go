package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, errLoad := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Fatalf("expected default listen addr, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Quota.MaxPerDay != DefaultMaxPerDay {
		t.Fatalf("expected default max per day %d, got %d", DefaultMaxPerDay, cfg.Quota.MaxPerDay)
	}
	if !cfg.Scheduler.Enabled {
		t.Fatalf("expected scheduler enabled by default")
	}
	if cfg.Scheduler.Hour != DefaultScheduleHour {
		t.Fatalf("expected schedule hour %d, got %d", DefaultScheduleHour, cfg.Scheduler.Hour)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  listen-addr: ":9090"
database:
  dsn: "file:test.db"
quota:
  max-per-day: 3
scheduler:
  enabled: true
  hour: 6
openai:
  model: gpt-4o-mini
`
	if errWrite := os.WriteFile(path, []byte(content), 0600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DAILYRIDDLE_MAX_PER_DAY", "7")

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr :9090, got %q", cfg.Server.ListenAddr)
	}
	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("expected model gpt-4o-mini, got %q", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected env api key override, got %q", cfg.OpenAI.APIKey)
	}
	if cfg.Quota.MaxPerDay != 7 {
		t.Fatalf("expected env quota override 7, got %d", cfg.Quota.MaxPerDay)
	}
	if cfg.Scheduler.Hour != 6 {
		t.Fatalf("expected schedule hour 6, got %d", cfg.Scheduler.Hour)
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath(" custom.yaml "); got != "custom.yaml" {
		t.Fatalf("expected custom.yaml, got %q", got)
	}
	t.Setenv("DAILYRIDDLE_CONFIG", "/etc/dailyriddle/config.yaml")
	if got := ResolveConfigPath(""); got != "/etc/dailyriddle/config.yaml" {
		t.Fatalf("expected env path, got %q", got)
	}
	t.Setenv("DAILYRIDDLE_CONFIG", "")
	if got := ResolveConfigPath(""); got != "config.yaml" {
		t.Fatalf("expected config.yaml fallback, got %q", got)
	}
}
