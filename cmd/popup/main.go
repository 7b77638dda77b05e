package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info
var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	configFile string
	noColor    bool
	quiet      bool
	verbose    bool
	debug      bool
)

// Root command
var rootCmd = &cobra.Command{
	Use:   "popup",
	Short: "Pipeline output processor and uploader",
	Long: `popup collects the per-sample output of a TRANA sequencing run
(NanoStats reports, NanoPlot plots, relative abundance tables, FastQC,
Krona and MultiQC reports), flags spike-in controls and contamination,
and uploads one document per sample to the Eyrie tracking service.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Example: `  # Write a sample config for barcode01 of a TRANA run
  popup generate-config /data/runs/RUN001 barcode01

  # Check the config against the run directory
  popup validate -s barcode01_config.yaml

  # Preview the upload document without sending it
  popup upload -s barcode01_config.yaml --dry-run --print-payload

  # Upload
  EYRIE_USER=lab EYRIE_PASSWORD=secret popup upload -s barcode01_config.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Tool configuration file (default: $POPUP_CONFIG or ~/.config/popup/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(connectionCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
