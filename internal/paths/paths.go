package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

type Paths struct {
	ConfigDir string
	StateDir  string
}

// GetPaths returns all base paths respecting environment variables
func GetPaths() Paths {
	return Paths{
		ConfigDir: getDir("POPUP_CONFIG_HOME", "XDG_CONFIG_HOME", ".config", "popup"),
		StateDir:  getDir("POPUP_STATE_HOME", "XDG_STATE_HOME", ".local/state", "popup"),
	}
}

func getDir(popupEnv, xdgEnv, defaultBase, appName string) string {
	// 1. Check popup-specific env
	if dir := os.Getenv(popupEnv); dir != "" {
		return dir
	}

	// 2. Check XDG env
	if xdgBase := os.Getenv(xdgEnv); xdgBase != "" {
		return filepath.Join(xdgBase, appName)
	}

	// 3. Use default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, defaultBase, appName)
}

// GetConfigPath returns the tool configuration file path
func GetConfigPath() string {
	if path := os.Getenv("POPUP_CONFIG"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().ConfigDir, "config.yaml")
}

// GetLedgerPath returns the path to the upload ledger database
func GetLedgerPath() string {
	if path := os.Getenv("POPUP_LEDGER_PATH"); path != "" {
		return path
	}
	return filepath.Join(GetPaths().StateDir, "uploads.db")
}

// EnsureDirectories creates the config and state directories
func EnsureDirectories() error {
	p := GetPaths()
	for _, dir := range []string{p.ConfigDir, p.StateDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
