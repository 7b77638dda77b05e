package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
	"gopkg.in/yaml.v3"
)

// ClassificationTypes are the accepted values of sample.classification_type.
var ClassificationTypes = []string{"16S", "ITS"}

// Stage is the part shared by every pipeline stage: a switch and the
// directory, relative to the run root, holding the stage's output.
type Stage struct {
	Enabled   *bool  `yaml:"enabled,omitempty"`
	Directory string `yaml:"directory"`
}

// IsEnabled reports whether the stage should be parsed. An omitted
// enabled key means enabled.
func (s *Stage) IsEnabled() bool {
	if s == nil {
		return false
	}
	return s.Enabled == nil || *s.Enabled
}

// FileStage is a stage producing a single named file (FastQC, Krona).
type FileStage struct {
	Stage `yaml:",inline"`
	File  string `yaml:"file"`
}

// MultiQCStage locates the run-wide MultiQC report.
type MultiQCStage struct {
	Stage      `yaml:",inline"`
	ReportFile string `yaml:"report_file"`
}

// NanoPlotStage lists the NanoStats report and HTML plots of one stage.
type NanoPlotStage struct {
	Stage     `yaml:",inline"`
	StatsFile string   `yaml:"stats_file"`
	HTMLFiles []string `yaml:"html_files"`
}

// NanoPlotConfig holds the processed and unprocessed NanoPlot stages.
type NanoPlotConfig struct {
	Unprocessed *NanoPlotStage `yaml:"unprocessed,omitempty"`
	Processed   *NanoPlotStage `yaml:"processed,omitempty"`
}

// ResultsStage locates the relative abundance table.
type ResultsStage struct {
	Stage            `yaml:",inline"`
	RelAbundanceFile string `yaml:"rel_abundance_file"`
}

// SampleConfig is the per-sample configuration document.
type SampleConfig struct {
	Sample       models.SampleInfo `yaml:"sample"`
	BasePath     string            `yaml:"base_path"`
	RunDirectory string            `yaml:"run_directory,omitempty"`
	FastQC       *FileStage        `yaml:"fastqc,omitempty"`
	Krona        *FileStage        `yaml:"krona,omitempty"`
	MultiQC      *MultiQCStage     `yaml:"multiqc,omitempty"`
	NanoPlot     *NanoPlotConfig   `yaml:"nanoplot,omitempty"`
	Results      *ResultsStage     `yaml:"results,omitempty"`
}

// LoadSample reads, defaults and validates a sample configuration
// document. Any error is fatal for the sample.
func LoadSample(path string) (*SampleConfig, error) {
	const op errors.Op = "config.LoadSample"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.E(op, errors.KindConfig, err, "failed to read sample config")
	}

	cfg, err := ParseSample(data)
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	return cfg, nil
}

// ParseSample decodes a sample configuration document from YAML.
func ParseSample(data []byte) (*SampleConfig, error) {
	const op errors.Op = "config.ParseSample"

	var cfg SampleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.E(op, errors.KindConfig, err, "failed to parse sample config")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *SampleConfig) applyDefaults() {
	c.BasePath = expandPath(c.BasePath)
	if c.FastQC != nil && c.FastQC.Directory == "" {
		c.FastQC.Directory = "fastqc"
	}
	if c.Krona != nil && c.Krona.Directory == "" {
		c.Krona.Directory = "krona"
	}
	if c.MultiQC != nil {
		if c.MultiQC.Directory == "" {
			c.MultiQC.Directory = "multiqc"
		}
		if c.MultiQC.ReportFile == "" {
			c.MultiQC.ReportFile = "multiqc_report.html"
		}
	}
	if c.Results != nil && c.Results.Directory == "" {
		c.Results.Directory = "results"
	}
}

// Validate checks the required fields of the document.
func (c *SampleConfig) Validate() error {
	const op errors.Op = "config.Validate"

	var problems []string
	required := []struct {
		name  string
		value string
	}{
		{"sample.sample_id", c.Sample.SampleID},
		{"sample.sample_name", c.Sample.SampleName},
		{"sample.lims_id", c.Sample.LimsID},
		{"sample.sequencing_run_id", c.Sample.SequencingRunID},
		{"sample.classification_type", c.Sample.ClassificationType},
		{"base_path", c.BasePath},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.name+" is required")
		}
	}

	if c.Sample.ClassificationType != "" && !isClassificationType(c.Sample.ClassificationType) {
		problems = append(problems, fmt.Sprintf("sample.classification_type must be one of %s, got %q",
			strings.Join(ClassificationTypes, ", "), c.Sample.ClassificationType))
	}

	if c.FastQC != nil && c.FastQC.File == "" {
		problems = append(problems, "fastqc.file is required")
	}
	if c.Krona != nil && c.Krona.File == "" {
		problems = append(problems, "krona.file is required")
	}
	if c.NanoPlot != nil {
		for _, s := range []struct {
			name  string
			stage *NanoPlotStage
		}{
			{"unprocessed", c.NanoPlot.Unprocessed},
			{"processed", c.NanoPlot.Processed},
		} {
			name, stage := s.name, s.stage
			if stage == nil {
				continue
			}
			if stage.Directory == "" {
				problems = append(problems, "nanoplot."+name+".directory is required")
			}
			if stage.StatsFile == "" {
				problems = append(problems, "nanoplot."+name+".stats_file is required")
			}
		}
	}
	if c.Results != nil && c.Results.RelAbundanceFile == "" {
		problems = append(problems, "results.rel_abundance_file is required")
	}

	if len(problems) > 0 {
		return errors.E(op, errors.KindValidation, "invalid sample config: "+strings.Join(problems, "; "))
	}
	return nil
}

// RunDir returns the run directory name: run_directory when set,
// otherwise the sequencing run id.
func (c *SampleConfig) RunDir() string {
	if c.RunDirectory != "" {
		return c.RunDirectory
	}
	return c.Sample.SequencingRunID
}

// RunRoot returns the filesystem path of the sequencing run.
func (c *SampleConfig) RunRoot() string {
	return filepath.Join(c.BasePath, c.RunDir())
}

// Save writes the document as YAML.
func (c *SampleConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}
	return nil
}

func isClassificationType(v string) bool {
	for _, t := range ClassificationTypes {
		if v == t {
			return true
		}
	}
	return false
}
