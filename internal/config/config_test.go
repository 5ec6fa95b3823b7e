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
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Server.Port = %q, expected 5000", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" || !cfg.Database.Seed {
		t.Errorf("unexpected database defaults %+v", cfg.Database)
	}
	if cfg.Upload.MaxBytes != 10<<20 {
		t.Errorf("Upload.MaxBytes = %d, expected 10MiB", cfg.Upload.MaxBytes)
	}
	if cfg.AI.Provider != "canned" || cfg.AI.Delay != time.Second {
		t.Errorf("unexpected AI defaults %+v", cfg.AI)
	}
	if cfg.Workflow.StrictTransitions {
		t.Error("strict transitions should be off by default")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: "8080"
upload:
  max_bytes: 2048
ai:
  provider: ollama
  delay: 250ms
workflow:
  strict_transitions: true
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, expected 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("unset keys should keep defaults, Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Upload.MaxBytes != 2048 {
		t.Errorf("Upload.MaxBytes = %d, expected 2048", cfg.Upload.MaxBytes)
	}
	if cfg.AI.Provider != "ollama" || cfg.AI.Delay != 250*time.Millisecond {
		t.Errorf("unexpected AI config %+v", cfg.AI)
	}
	if !cfg.Workflow.StrictTransitions {
		t.Error("strict transitions should be on")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestOverrideFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("AI_PROVIDER", "anthropic")
	t.Setenv("WORKFLOW_STRICT_TRANSITIONS", "true")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg := DefaultConfig()
	cfg.overrideFromEnv()

	if cfg.Server.Port != "9000" || cfg.Database.Driver != "postgres" || cfg.AI.Provider != "anthropic" {
		t.Errorf("env overrides not applied: %+v %+v %+v", cfg.Server, cfg.Database, cfg.AI)
	}
	if !cfg.Workflow.StrictTransitions || cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("unexpected workflow/auth %+v %+v", cfg.Workflow, cfg.Auth)
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		url, addr, password string
		db                  int
	}{
		{"redis://localhost:6379", "localhost:6379", "", 0},
		{"redis://:pw@cache:6380/2", "cache:6380", "pw", 2},
		{"redis://user:pw@cache:6379/1", "cache:6379", "pw", 1},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.parseRedisURL(tt.url)
		if cfg.Redis.Addr != tt.addr || cfg.Redis.Password != tt.password || cfg.Redis.DB != tt.db {
			t.Errorf("parseRedisURL(%q) = %+v", tt.url, cfg.Redis)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Calendar.HolidayCountry = "GB"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Calendar.HolidayCountry != "GB" {
		t.Errorf("HolidayCountry = %q, expected GB", loaded.Calendar.HolidayCountry)
	}
}
