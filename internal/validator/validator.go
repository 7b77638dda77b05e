// Package validator lints sample configuration documents against the
// run directory they describe.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/parser"
)

// Validator validates sample configuration documents
type Validator struct {
	config ValidationConfig
}

// ValidationConfig holds validation configuration
type ValidationConfig struct {
	ValidateReferences bool // Check that configured files exist
	ValidateNaming     bool // Check NanoPlot file names and sample id prefixes
	StrictMode         bool // Treat warnings as errors
}

// NewValidator creates a new validator
func NewValidator(config ValidationConfig) *Validator {
	return &Validator{
		config: config,
	}
}

// DefaultValidator creates a validator with default settings
func DefaultValidator() *Validator {
	return &Validator{
		config: ValidationConfig{
			ValidateReferences: true,
			ValidateNaming:     true,
			StrictMode:         false,
		},
	}
}

// ValidationResult contains validation results
type ValidationResult struct {
	IsValid  bool                `json:"is_valid"`
	SampleID string              `json:"sample_id,omitempty"`
	Errors   []ValidationError   `json:"errors,omitempty"`
	Warnings []ValidationWarning `json:"warnings,omitempty"`
	Stats    ValidationStats     `json:"stats"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationWarning represents a validation warning
type ValidationWarning struct {
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationStats contains validation statistics
type ValidationStats struct {
	StagesEnabled int `json:"stages_enabled"`
	FilesChecked  int `json:"files_checked"`
	FilesFound    int `json:"files_found"`
}

// ValidateFile loads and validates the sample configuration at path.
func (v *Validator) ValidateFile(path string) *ValidationResult {
	cfg, err := config.LoadSample(path)
	if err != nil {
		return &ValidationResult{
			IsValid: false,
			Errors: []ValidationError{{
				Type:    "INVALID_CONFIG",
				Message: err.Error(),
			}},
		}
	}
	return v.Validate(cfg)
}

// Validate lints an already loaded sample configuration.
func (v *Validator) Validate(cfg *config.SampleConfig) *ValidationResult {
	result := &ValidationResult{
		IsValid:  true,
		SampleID: cfg.Sample.SampleID,
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	if err := cfg.Validate(); err != nil {
		result.addError("INVALID_CONFIG", "", err.Error())
	}

	root := cfg.RunRoot()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		result.addWarning("RUN_ROOT_MISSING", "base_path", fmt.Sprintf("run directory %s does not exist", root))
	}

	if s := cfg.FastQC; s != nil && s.IsEnabled() {
		v.checkFile(result, root, "fastqc", s.Directory, s.File)
	}
	if s := cfg.Krona; s != nil && s.IsEnabled() {
		v.checkFile(result, root, "krona", s.Directory, s.File)
	}
	if s := cfg.MultiQC; s != nil && s.IsEnabled() {
		v.checkFile(result, root, "multiqc", s.Directory, s.ReportFile)
	}
	if np := cfg.NanoPlot; np != nil {
		v.checkNanoPlot(result, root, "nanoplot.unprocessed", np.Unprocessed)
		v.checkNanoPlot(result, root, "nanoplot.processed", np.Processed)
	}
	if s := cfg.Results; s != nil && s.IsEnabled() {
		v.checkFile(result, root, "results", s.Directory, s.RelAbundanceFile)
	}

	if result.Stats.StagesEnabled == 0 {
		result.addWarning("NO_STAGES", "", "no stage is enabled; the upload will only carry sample metadata")
	}

	if v.config.StrictMode {
		for _, w := range result.Warnings {
			result.addError(w.Type, w.Field, w.Message)
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) checkFile(result *ValidationResult, root, field, dir, file string) {
	result.Stats.StagesEnabled++
	v.checkReference(result, root, field, dir, file)
	v.checkSampleID(result, field, file)
}

func (v *Validator) checkNanoPlot(result *ValidationResult, root, field string, stage *config.NanoPlotStage) {
	if stage == nil || !stage.IsEnabled() {
		return
	}
	result.Stats.StagesEnabled++

	v.checkReference(result, root, field+".stats_file", stage.Directory, stage.StatsFile)
	v.checkSampleID(result, field+".stats_file", stage.StatsFile)

	if len(stage.HTMLFiles) == 0 {
		result.addWarning("NO_PLOTS", field+".html_files", "no NanoPlot HTML files listed")
	}

	slots := make(map[models.NanoPlotSlot]string)
	for i, name := range stage.HTMLFiles {
		f := fmt.Sprintf("%s.html_files[%d]", field, i)
		v.checkReference(result, root, f, stage.Directory, name)

		if !v.config.ValidateNaming {
			continue
		}
		slot, ok := parser.ClassifyNanoPlotFile(name)
		if !ok {
			result.addWarning("UNKNOWN_PLOT", f,
				fmt.Sprintf("%s matches no NanoPlot plot type and will not appear in the structured upload", name))
			continue
		}
		if prev, dup := slots[slot]; dup {
			result.addWarning("DUPLICATE_PLOT", f,
				fmt.Sprintf("%s and %s both map to %s; the last one wins", prev, name, slot))
		}
		slots[slot] = name
	}
}

func (v *Validator) checkReference(result *ValidationResult, root, field, dir, file string) {
	if !v.config.ValidateReferences || file == "" {
		return
	}
	result.Stats.FilesChecked++
	if _, ok := parser.Locate(root, dir, file); ok {
		result.Stats.FilesFound++
		return
	}
	result.addWarning("FILE_MISSING", field, fmt.Sprintf("%s not found", filepath.Join(dir, file)))
}

func (v *Validator) checkSampleID(result *ValidationResult, field, file string) {
	if !v.config.ValidateNaming || file == "" || result.SampleID == "" {
		return
	}
	// The MultiQC report is shared by every sample of a run
	if field == "multiqc" {
		return
	}
	if !strings.Contains(file, result.SampleID) {
		result.addWarning("SAMPLE_ID_MISMATCH", field,
			fmt.Sprintf("%s does not contain the sample id %s", file, result.SampleID))
	}
}

func (r *ValidationResult) addError(kind, field, msg string) {
	r.Errors = append(r.Errors, ValidationError{Type: kind, Field: field, Message: msg})
}

func (r *ValidationResult) addWarning(kind, field, msg string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Type: kind, Field: field, Message: msg})
}
