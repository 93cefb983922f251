package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.PollInterval != 500*time.Millisecond {
		t.Errorf("expected default poll interval, got %v", cfg.PollInterval)
	}
	if cfg.PollMaxWait != 2*time.Minute {
		t.Errorf("expected default poll max wait, got %v", cfg.PollMaxWait)
	}
	if cfg.AdminPassword != "" {
		t.Errorf("expected admin disabled by default, got %q", cfg.AdminPassword)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("PORT", "9090")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("REDIS_URL", "redis://localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %s", cfg.Model)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("expected 250ms poll interval, got %v", cfg.PollInterval)
	}
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Errorf("unexpected redis url %s", cfg.RedisURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.yaml")
	content := `
global:
  classification: student
files:
  handbook.docx:
    doc: Student Handbook
    source_url: https://x/handbook
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	overrides, err := LoadOverrides(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overrides.Global["classification"] != "student" {
		t.Errorf("unexpected global overrides: %v", overrides.Global)
	}
	if overrides.ByFile["handbook.docx"]["doc"] != "Student Handbook" {
		t.Errorf("unexpected per-file overrides: %v", overrides.ByFile)
	}
}

func TestLoadOverrides_EmptyPath(t *testing.T) {
	overrides, err := LoadOverrides("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if overrides != nil {
		t.Error("expected nil overrides for empty path")
	}
}

func TestLoadOverrides_MissingFile(t *testing.T) {
	if _, err := LoadOverrides("/nonexistent/overrides.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOverrides_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("global: [not a map"), 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	if _, err := LoadOverrides(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
