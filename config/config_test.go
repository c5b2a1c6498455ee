package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "clawservant" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Interval != 5*time.Second {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.MaxTokens != 500 || cfg.MaxToolIterations != 10 {
		t.Errorf("limits = %d tokens, %d iterations", cfg.MaxTokens, cfg.MaxToolIterations)
	}
	if cfg.EnableShell {
		t.Error("EnableShell should default to false")
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
name: helper
interval: 30s
max_tokens: 1000
enable_shell: true
log_level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "helper" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.Interval != 30*time.Second {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.MaxTokens != 1000 {
		t.Errorf("MaxTokens = %d", cfg.MaxTokens)
	}
	if !cfg.EnableShell {
		t.Error("EnableShell = false")
	}
	if cfg.MaxToolIterations != 10 {
		t.Errorf("unset MaxToolIterations = %d, want default 10", cfg.MaxToolIterations)
	}
	if cfg.CallTimeout != 120*time.Second {
		t.Errorf("unset CallTimeout = %v, want default", cfg.CallTimeout)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should error on invalid YAML")
	}
}

func TestLoadCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	doc := `{
		"providers": [
			{"name": "openai", "config": {"api_key": "sk-x"}}
		],
		"fallback_order": ["openai"]
	}`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if len(creds.Providers) != 1 || creds.Providers[0].Name != "openai" {
		t.Errorf("providers = %+v", creds.Providers)
	}
	if len(creds.FallbackOrder) != 1 || creds.FallbackOrder[0] != "openai" {
		t.Errorf("fallback_order = %v", creds.FallbackOrder)
	}
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	creds, err := LoadCredentials(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if len(creds.Providers) != 0 {
		t.Errorf("providers = %+v, want none", creds.Providers)
	}
	want := []string{"bedrock", "anthropic", "openai", "ollama"}
	if len(creds.FallbackOrder) != len(want) {
		t.Fatalf("fallback_order = %v, want %v", creds.FallbackOrder, want)
	}
	for i := range want {
		if creds.FallbackOrder[i] != want[i] {
			t.Errorf("fallback_order[%d] = %q, want %q", i, creds.FallbackOrder[i], want[i])
		}
	}
}

func TestLoadCredentialsOmittedOrderGetsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{"providers":[]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	creds, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials() error = %v", err)
	}
	if len(creds.FallbackOrder) != 4 {
		t.Errorf("fallback_order = %v, want default", creds.FallbackOrder)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"trace", LevelTrace, false},
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLogLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
