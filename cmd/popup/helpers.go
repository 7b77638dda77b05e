package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/paths"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/ui"
	"golang.org/x/term"
)

// Color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Environment variables holding tracking service credentials
const (
	envUser     = "EYRIE_USER"
	envPassword = "EYRIE_PASSWORD"
)

// Apply color if terminal output and color enabled
func colorize(color, text string) string {
	if !noColor && ui.IsTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "" {
		return color + text + colorReset
	}
	return text
}

// Print error message in user-friendly format
func printError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorRed, "✗"), msg)
}

// Print success message
func printSuccess(format string, args ...interface{}) {
	if !quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("%s %s\n", colorize(colorGreen, "✓"), msg)
	}
}

// Print info message
func printInfo(format string, args ...interface{}) {
	if !quiet {
		msg := fmt.Sprintf(format, args...)
		fmt.Printf("%s\n", colorize(colorCyan, msg))
	}
}

// Print warning message
func printWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorYellow, "⚠"), msg)
}

// Print debug message
func printDebug(format string, args ...interface{}) {
	if debug {
		msg := fmt.Sprintf(format, args...)
		fmt.Fprintf(os.Stderr, "%s %s\n", colorize(colorGray, "[DEBUG]"), msg)
	}
}

// toolConfigPath returns --config or the default location
func toolConfigPath() string {
	if configFile != "" {
		return configFile
	}
	return paths.GetConfigPath()
}

// loadToolConfig loads the tool configuration, falling back to defaults
func loadToolConfig() (*config.Config, error) {
	path := toolConfigPath()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	printDebug("Tool config: %s", path)
	return cfg, nil
}

// credentials resolves the username and password from flags, then the
// environment, then the tool config. When only a username is known and
// stdin is a terminal the password is prompted for.
func credentials(cfg *config.Config, username, password string) (string, string, error) {
	if username == "" {
		username = os.Getenv(envUser)
	}
	if username == "" {
		username = cfg.API.Username
	}
	if password == "" {
		password = os.Getenv(envPassword)
	}

	if username != "" && password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "Password for %s: ", username)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(raw)
	}

	return username, password, nil
}

// confirm asks a yes/no question on stdin
func confirm(question string) bool {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
