package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate-config TRANA_DIR SAMPLE_ID",
	Short: "Write a sample configuration for a TRANA output directory",
	Long: `Write a sample configuration that follows the TRANA file naming
conventions:

  fastqc/<id>_fastqc.html
  krona/<id>_krona.html
  multiqc/multiqc_report.html
  nanoplot_{unprocessed,processed}/<id>_nanoplot_<stage>_NanoStats.txt
  nanoplot_{unprocessed,processed}/<id>_nanoplot_<stage>_<plot>.html
  results/<id>_filtered.fastq_rel-abundance.tsv

The parent of TRANA_DIR becomes base_path and its name the run
directory. Sample ids starting with "barcode" are also used as the
barcode.`,
	Example: `  popup generate-config /data/runs/RUN001 barcode01
  popup generate-config /data/runs/RUN001 S12 --classification ITS --run-id RUN001 -o S12.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

var (
	generateOutput         string
	generateSampleName     string
	generateLimsID         string
	generateRunID          string
	generateRunDir         string
	generateClassification string
	generateForce          bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output file (default: <sample_id>_config.yaml)")
	generateCmd.Flags().StringVar(&generateSampleName, "sample-name", "", "Sample name (default: Sample_<sample_id>)")
	generateCmd.Flags().StringVar(&generateLimsID, "lims-id", "", "LIMS id (default: LIMS_<sample_id>)")
	generateCmd.Flags().StringVar(&generateRunID, "run-id", "", "Sequencing run id (default: RUN_<today>)")
	generateCmd.Flags().StringVar(&generateRunDir, "run-dir", "", "Run directory name (default: TRANA_DIR name)")
	generateCmd.Flags().StringVar(&generateClassification, "classification", "16S", "Classification type (16S|ITS)")
	generateCmd.Flags().BoolVarP(&generateForce, "force", "f", false, "Overwrite an existing output file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	tranaDir, sampleID := args[0], args[1]

	abs, err := filepath.Abs(tranaDir)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", tranaDir, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		printWarning("TRANA directory %s does not exist yet", abs)
	}

	cfg, err := config.GenerateSample(config.GenerateOptions{
		OutputDir:      abs,
		SampleID:       sampleID,
		SampleName:     generateSampleName,
		LimsID:         generateLimsID,
		RunID:          generateRunID,
		RunDir:         generateRunDir,
		Classification: generateClassification,
	})
	if err != nil {
		return err
	}

	output := generateOutput
	if output == "" {
		output = sampleID + "_config.yaml"
	}
	if _, err := os.Stat(output); err == nil && !generateForce {
		if !confirm(fmt.Sprintf("%s exists. Overwrite?", output)) {
			printInfo("Keeping existing %s", output)
			return nil
		}
	}

	if err := cfg.Save(output); err != nil {
		return err
	}

	printSuccess("Wrote sample config for %s to %s", sampleID, output)
	if verbose {
		printInfo("Run root: %s", cfg.RunRoot())
	}
	return nil
}
