package main

import (
	"encoding/json"
	"fmt"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a sample configuration against its run directory",
	Long: `Validate the structure of a sample configuration and lint it
against the run directory: missing files, NanoPlot files that map to no
plot type, duplicate plots and file names without the sample id are
reported as warnings.`,
	Example: `  popup validate -s barcode01_config.yaml
  popup validate -s barcode01_config.yaml --strict --json`,
	RunE: runValidate,
}

var (
	validateSample string
	validateStrict bool
	validateNoRefs bool
	validateJSON   bool
)

func init() {
	validateCmd.Flags().StringVarP(&validateSample, "sample", "s", "", "Sample configuration file (required)")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().BoolVar(&validateNoRefs, "no-files", false, "Skip checking that configured files exist")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the result as JSON")
	validateCmd.MarkFlagRequired("sample")
}

func runValidate(cmd *cobra.Command, args []string) error {
	v := validator.NewValidator(validator.ValidationConfig{
		ValidateReferences: !validateNoRefs,
		ValidateNaming:     true,
		StrictMode:         validateStrict,
	})
	result := v.ValidateFile(validateSample)

	if validateJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Println(string(out))
	} else {
		for _, w := range result.Warnings {
			printWarning("%s %s: %s", colorize(colorGray, w.Type), w.Field, w.Message)
		}
		for _, e := range result.Errors {
			printError("%s %s: %s", colorize(colorGray, e.Type), e.Field, e.Message)
		}
		if !validateStrict || len(result.Warnings) == 0 {
			printInfo("%d stages enabled, %d of %d files found",
				result.Stats.StagesEnabled, result.Stats.FilesFound, result.Stats.FilesChecked)
		}
	}

	if !result.IsValid {
		return fmt.Errorf("%s is invalid (%d errors)", validateSample, len(result.Errors))
	}
	printSuccess("%s is valid", validateSample)
	return nil
}
