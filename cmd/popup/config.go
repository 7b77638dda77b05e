package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/paths"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage popup configuration",
	Long:  `Manage the popup tool configuration: tracking service, spike-in species, ledger and metrics.`,
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show all active paths",
	RunE:  runConfigPaths,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration",
	Long: `Create a default configuration file. If a config file already
exists, use --force to overwrite it.`,
	Example: `  popup config init
  popup config init --force`,
	RunE: runConfigInit,
}

var (
	configForce bool
)

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing configuration")

	configCmd.AddCommand(configPathsCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigPaths(cmd *cobra.Command, args []string) error {
	p := paths.GetPaths()

	printInfo("popup Paths")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))

	fmt.Printf("%s\n", colorize(colorBold, "Base Directories:"))
	fmt.Printf("  Config:  %s\n", colorize(colorCyan, p.ConfigDir))
	fmt.Printf("  State:   %s\n", colorize(colorCyan, p.StateDir))

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Specific Paths:"))
	fmt.Printf("  Config:  %s\n", colorize(colorCyan, toolConfigPath()))
	fmt.Printf("  Ledger:  %s\n", colorize(colorCyan, paths.GetLedgerPath()))

	envVars := []struct {
		name string
		desc string
	}{
		{"POPUP_CONFIG_HOME", "Override config directory"},
		{"POPUP_STATE_HOME", "Override state directory"},
		{"POPUP_CONFIG", "Override config file"},
		{"POPUP_LEDGER_PATH", "Override ledger path"},
		{envUser, "Tracking service username"},
	}

	hasEnv := false
	for _, env := range envVars {
		if os.Getenv(env.name) != "" {
			hasEnv = true
			break
		}
	}

	if hasEnv {
		fmt.Println()
		fmt.Printf("%s\n", colorize(colorBold, "Environment Variables:"))
		for _, env := range envVars {
			if val := os.Getenv(env.name); val != "" {
				fmt.Printf("  %s = %s\n",
					colorize(colorYellow, env.name),
					colorize(colorCyan, val))
				if verbose {
					fmt.Printf("    %s\n", colorize(colorGray, env.desc))
				}
			}
		}
	}

	fmt.Println()
	fmt.Printf("%s\n", colorize(colorBold, "Path Status:"))
	for _, check := range []struct {
		name string
		path string
	}{
		{"Config", toolConfigPath()},
		{"Ledger", paths.GetLedgerPath()},
	} {
		if _, err := os.Stat(check.path); err == nil {
			fmt.Printf("  %-8s %s\n", check.name+":", colorize(colorGreen, "✓ exists"))
		} else {
			fmt.Printf("  %-8s %s\n", check.name+":", colorize(colorGray, "✗ not found"))
		}
	}

	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	configPath := toolConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	printInfo("Configuration")
	fmt.Println(colorize(colorGray, "────────────────────────────────────────"))
	fmt.Printf("%s %s\n", colorize(colorBold, "Config File:"), configPath)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Println(colorize(colorYellow, "  (using defaults - no config file found)"))
	}
	fmt.Println()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format config: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			fmt.Println(colorize(colorBold, line))
		} else if strings.Contains(line, ": ") {
			parts := strings.SplitN(line, ": ", 2)
			indent := len(line) - len(strings.TrimLeft(line, " "))
			fmt.Printf("%s%s: %s\n",
				strings.Repeat(" ", indent),
				colorize(colorCyan, strings.TrimSpace(parts[0])),
				colorize(colorGreen, parts[1]))
		} else {
			fmt.Println(line)
		}
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := toolConfigPath()

	if _, err := os.Stat(configPath); err == nil && !configForce {
		printWarning("Configuration already exists at %s", configPath)
		fmt.Println("Use --force to overwrite")
		return nil
	}

	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	if err := config.DefaultConfig().Save(configPath); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	printSuccess("Configuration created at %s", configPath)
	fmt.Println()
	return runConfigShow(cmd, args)
}
