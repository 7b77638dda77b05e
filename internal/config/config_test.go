package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.API.URL != "http://localhost:8000/api" {
		t.Errorf("expected default api url, got %q", cfg.API.URL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("expected timeout_seconds 30, got %d", cfg.API.TimeoutSeconds)
	}
	if len(cfg.Spike.Species) != len(DefaultSpikeSpecies) {
		t.Errorf("expected %d spike species, got %d", len(DefaultSpikeSpecies), len(cfg.Spike.Species))
	}
	if !cfg.Ledger.Enabled {
		t.Error("expected ledger to be enabled by default")
	}

	// Mutating the defaults must not leak into the package variable
	cfg.Spike.Species[0] = "Escherichia coli"
	if DefaultSpikeSpecies[0] == "Escherichia coli" {
		t.Error("DefaultConfig shares the DefaultSpikeSpecies backing array")
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load should return defaults for non-existent file, got error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config for non-existent file")
	}
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
api:
  url: https://eyrie.example.org/api
  timeout_seconds: 5
spike:
  species:
    - Imtechella halotolerans
ledger:
  enabled: false
metrics:
  textfile: /tmp/popup.prom
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.API.URL != "https://eyrie.example.org/api" {
		t.Errorf("expected api url override, got %q", cfg.API.URL)
	}
	if cfg.Timeout().Seconds() != 5 {
		t.Errorf("expected 5s timeout, got %v", cfg.Timeout())
	}
	if len(cfg.Spike.Species) != 1 || cfg.Spike.Species[0] != "Imtechella halotolerans" {
		t.Errorf("expected spike list override, got %v", cfg.Spike.Species)
	}
	if cfg.Ledger.Enabled {
		t.Error("expected ledger to be disabled")
	}
	if cfg.Metrics.Textfile != "/tmp/popup.prom" {
		t.Errorf("expected metrics textfile, got %q", cfg.Metrics.Textfile)
	}
}

func TestLoadRestoresEmptySpikeList(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("spike:\n  species: []\napi:\n  timeout_seconds: 0\n"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Spike.Species) != len(DefaultSpikeSpecies) {
		t.Errorf("expected default spike species, got %v", cfg.Spike.Species)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("expected timeout reset to 30, got %d", cfg.API.TimeoutSeconds)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: [broken"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.API.URL = "http://tracker:9000/api"
	cfg.Ledger.Enabled = false

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.API.URL != "http://tracker:9000/api" {
		t.Errorf("expected saved api url, got %q", loaded.API.URL)
	}
	if loaded.Ledger.Enabled {
		t.Error("expected ledger to stay disabled after round trip")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~/popup", filepath.Join(home, "popup")},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.expected {
			t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
