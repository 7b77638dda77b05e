package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetPaths(t *testing.T) {
	p := GetPaths()

	if p.ConfigDir == "" {
		t.Error("ConfigDir should not be empty")
	}
	if p.StateDir == "" {
		t.Error("StateDir should not be empty")
	}
	if !strings.Contains(p.ConfigDir, "popup") {
		t.Errorf("ConfigDir should contain 'popup', got %q", p.ConfigDir)
	}
}

func TestGetPathsWithPopupEnv(t *testing.T) {
	t.Setenv("POPUP_CONFIG_HOME", "/custom/config")
	t.Setenv("POPUP_STATE_HOME", "/custom/state")

	p := GetPaths()

	if p.ConfigDir != "/custom/config" {
		t.Errorf("expected ConfigDir '/custom/config', got %q", p.ConfigDir)
	}
	if p.StateDir != "/custom/state" {
		t.Errorf("expected StateDir '/custom/state', got %q", p.StateDir)
	}
}

func TestGetPathsWithXDGEnv(t *testing.T) {
	t.Setenv("POPUP_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")

	p := GetPaths()
	if p.ConfigDir != filepath.Join("/xdg/config", "popup") {
		t.Errorf("expected ConfigDir '/xdg/config/popup', got %q", p.ConfigDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("POPUP_CONFIG", "")
	t.Setenv("POPUP_CONFIG_HOME", "/cfg")
	if got := GetConfigPath(); got != filepath.Join("/cfg", "config.yaml") {
		t.Errorf("GetConfigPath() = %q", got)
	}

	t.Setenv("POPUP_CONFIG", "/explicit/popup.yaml")
	if got := GetConfigPath(); got != "/explicit/popup.yaml" {
		t.Errorf("GetConfigPath() with env = %q", got)
	}
}

func TestGetLedgerPath(t *testing.T) {
	t.Setenv("POPUP_LEDGER_PATH", "")
	if !strings.HasSuffix(GetLedgerPath(), "uploads.db") {
		t.Errorf("expected ledger path to end with 'uploads.db', got %q", GetLedgerPath())
	}

	t.Setenv("POPUP_LEDGER_PATH", "/custom/ledger.db")
	if got := GetLedgerPath(); got != "/custom/ledger.db" {
		t.Errorf("expected '/custom/ledger.db', got %q", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	t.Setenv("POPUP_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("POPUP_STATE_HOME", filepath.Join(base, "state"))

	if err := EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error = %v", err)
	}

	for _, dir := range []string{"config", "state"} {
		info, err := os.Stat(filepath.Join(base, dir))
		if err != nil {
			t.Errorf("expected %s to exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("expected %s to be a directory", dir)
		}
	}
}
