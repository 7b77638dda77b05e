package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/database"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded upload attempts",
	Long:  `List upload attempts from the local ledger, newest first.`,
	Example: `  popup history
  popup history --sample barcode01 --limit 5
  popup history --info`,
	RunE: runHistory,
}

var (
	historySample string
	historyLimit  int
	historyJSON   bool
	historyInfo   bool
)

func init() {
	historyCmd.Flags().StringVar(&historySample, "sample", "", "Only show attempts for this sample id")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum attempts to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print attempts as JSON")
	historyCmd.Flags().BoolVar(&historyInfo, "info", false, "Show ledger statistics instead of attempts")
}

func runHistory(cmd *cobra.Command, args []string) error {
	toolCfg, err := loadToolConfig()
	if err != nil {
		return err
	}

	dbPath := toolCfg.Ledger.Path
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		printWarning("No upload ledger at %s", dbPath)
		return nil
	}

	db, err := database.Initialize(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer db.Close()

	if historyInfo {
		return showLedgerInfo(db)
	}

	uploads, err := db.ListUploads(historySample, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		out, err := json.MarshalIndent(uploads, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode uploads: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if len(uploads) == 0 {
		printInfo("No uploads recorded")
		return nil
	}

	fmt.Printf("%-20s %-16s %-10s %-8s %-6s %-12s %s\n",
		colorize(colorBold, "WHEN"), "SAMPLE", "RUN", "ACTION", "HTTP", "QC", "RESULT")
	for _, u := range uploads {
		fmt.Printf("%-20s %-16s %-10s %-8s %-6s %-12s %s\n",
			u.UploadedAt.Local().Format("2006-01-02 15:04:05"),
			u.SampleID, u.RunDirectory, orDash(u.Action), statusText(u.StatusCode), u.QC, outcome(u))
		if verbose && u.Error != "" {
			fmt.Printf("  %s\n", colorize(colorGray, u.Error))
		}
	}
	return nil
}

func showLedgerInfo(db *database.DB) error {
	info, err := db.GetInfo()
	if err != nil {
		return err
	}
	attempts, err := db.CountTable("uploads")
	if err != nil {
		return err
	}

	printInfo("Upload Ledger")
	fmt.Println(colorize(colorGray, strings.Repeat("─", 40)))
	fmt.Printf("%s %s\n", colorize(colorBold, "Path:"), info.Path)
	fmt.Printf("%s %.2f KB\n", colorize(colorBold, "Size:"), float64(info.Size)/1024)
	fmt.Println()
	fmt.Printf("  attempts:  %s\n", colorize(colorCyan, fmt.Sprintf("%d", attempts)))
	fmt.Printf("  uploads:   %s\n", colorize(colorCyan, fmt.Sprintf("%d", info.Uploads)))
	fmt.Printf("  samples:   %s\n", colorize(colorCyan, fmt.Sprintf("%d", info.Samples)))
	fmt.Printf("  succeeded: %s\n", colorize(colorCyan, fmt.Sprintf("%d", info.Succeeded)))
	return nil
}

func outcome(u database.Upload) string {
	switch {
	case u.DryRun:
		return colorize(colorGray, "dry run")
	case u.OK:
		return colorize(colorGreen, "ok")
	case u.Retryable:
		return colorize(colorYellow, "failed (retryable)")
	default:
		return colorize(colorRed, "failed")
	}
}

func statusText(code int) string {
	if code == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", code)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
