package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// NanoPlotPlots are the plot suffixes NanoPlot writes for every stage.
var NanoPlotPlots = []string{
	"NanoPlot-report.html",
	"LengthvsQualityScatterPlot_dot.html",
	"LengthvsQualityScatterPlot_kde.html",
	"Non_weightedHistogramReadlength.html",
	"WeightedHistogramReadlength.html",
	"Yield_By_Length.html",
}

// GenerateOptions describe a TRANA output directory for one sample.
type GenerateOptions struct {
	OutputDir      string // TRANA output directory (the run root)
	SampleID       string
	SampleName     string
	LimsID         string
	RunID          string
	RunDir         string
	Classification string
	Now            func() time.Time
}

// GenerateSample builds a sample configuration following the TRANA
// file naming conventions. Empty options are filled with defaults
// derived from the sample id and the output directory.
func GenerateSample(opts GenerateOptions) (*SampleConfig, error) {
	if opts.SampleID == "" {
		return nil, fmt.Errorf("sample id is required")
	}
	if opts.Classification == "" {
		opts.Classification = "16S"
	}
	if !isClassificationType(opts.Classification) {
		return nil, fmt.Errorf("classification must be one of %s, got %q",
			strings.Join(ClassificationTypes, ", "), opts.Classification)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	id := opts.SampleID
	if opts.SampleName == "" {
		opts.SampleName = "Sample_" + id
	}
	if opts.LimsID == "" {
		opts.LimsID = "LIMS_" + id
	}
	if opts.RunID == "" {
		opts.RunID = "RUN_" + opts.Now().Format("2006_01_02")
	}

	outputDir := filepath.Clean(opts.OutputDir)
	if opts.RunDir == "" {
		if name := filepath.Base(outputDir); name != "." && name != string(filepath.Separator) {
			opts.RunDir = name
		} else {
			opts.RunDir = opts.RunID
		}
	}

	info := models.SampleInfo{
		SampleID:           id,
		SampleName:         opts.SampleName,
		LimsID:             opts.LimsID,
		SequencingRunID:    opts.RunID,
		ClassificationType: opts.Classification,
	}
	if strings.HasPrefix(id, "barcode") {
		info.Barcode = id
	}

	enabled := func() *bool { v := true; return &v }

	cfg := &SampleConfig{
		Sample:       info,
		BasePath:     filepath.Dir(outputDir),
		RunDirectory: opts.RunDir,
		FastQC: &FileStage{
			Stage: Stage{Enabled: enabled(), Directory: "fastqc"},
			File:  id + "_fastqc.html",
		},
		Krona: &FileStage{
			Stage: Stage{Enabled: enabled(), Directory: "krona"},
			File:  id + "_krona.html",
		},
		MultiQC: &MultiQCStage{
			Stage:      Stage{Enabled: enabled(), Directory: "multiqc"},
			ReportFile: "multiqc_report.html",
		},
		NanoPlot: &NanoPlotConfig{
			Unprocessed: nanoPlotStage(id, "unprocessed"),
			Processed:   nanoPlotStage(id, "processed"),
		},
		Results: &ResultsStage{
			Stage:            Stage{Enabled: enabled(), Directory: "results"},
			RelAbundanceFile: id + "_filtered.fastq_rel-abundance.tsv",
		},
	}

	return cfg, nil
}

func nanoPlotStage(id, stage string) *NanoPlotStage {
	prefix := fmt.Sprintf("%s_nanoplot_%s_", id, stage)
	html := make([]string, 0, len(NanoPlotPlots))
	for _, plot := range NanoPlotPlots {
		html = append(html, prefix+plot)
	}
	enabled := true
	return &NanoPlotStage{
		Stage:     Stage{Enabled: &enabled, Directory: "nanoplot_" + stage},
		StatsFile: prefix + "NanoStats.txt",
		HTMLFiles: html,
	}
}
