package validator

import (
	"path/filepath"
	"testing"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/testutil"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator(ValidationConfig{
		ValidateReferences: true,
		ValidateNaming:     false,
		StrictMode:         true,
	})

	if v == nil {
		t.Fatal("NewValidator returned nil")
	}
	if !v.config.StrictMode {
		t.Error("expected StrictMode to be true")
	}
}

func TestDefaultValidator(t *testing.T) {
	v := DefaultValidator()
	if v == nil {
		t.Fatal("DefaultValidator returned nil")
	}
	if !v.config.ValidateReferences {
		t.Error("expected ValidateReferences to be true")
	}
	if !v.config.ValidateNaming {
		t.Error("expected ValidateNaming to be true")
	}
	if v.config.StrictMode {
		t.Error("expected StrictMode to be false")
	}
}

func hasWarning(r *ValidationResult, kind string) bool {
	for _, w := range r.Warnings {
		if w.Type == kind {
			return true
		}
	}
	return false
}

func TestValidateCompleteRun(t *testing.T) {
	_, cfg := testutil.TRANARun(t, "barcode01")

	result := DefaultValidator().Validate(cfg)
	if !result.IsValid {
		t.Errorf("expected valid result, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.Stats.StagesEnabled != 6 {
		t.Errorf("expected 6 enabled stages, got %d", result.Stats.StagesEnabled)
	}
	if result.Stats.FilesChecked != 18 || result.Stats.FilesFound != 18 {
		t.Errorf("unexpected file stats %+v", result.Stats)
	}
}

func TestValidateMissingFiles(t *testing.T) {
	cfg, err := config.GenerateSample(config.GenerateOptions{
		OutputDir: filepath.Join(t.TempDir(), "RUN001"),
		SampleID:  "S1",
	})
	testutil.RequireNoError(t, err, "GenerateSample")

	result := DefaultValidator().Validate(cfg)
	if !result.IsValid {
		t.Errorf("missing files should only warn, got errors %v", result.Errors)
	}
	if !hasWarning(result, "RUN_ROOT_MISSING") || !hasWarning(result, "FILE_MISSING") {
		t.Errorf("expected missing run and file warnings, got %v", result.Warnings)
	}

	strict := NewValidator(ValidationConfig{ValidateReferences: true, StrictMode: true}).Validate(cfg)
	if strict.IsValid {
		t.Error("expected strict mode to turn warnings into errors")
	}
}

func TestValidateNaming(t *testing.T) {
	_, cfg := testutil.TRANARun(t, "S1")
	stage := cfg.NanoPlot.Processed
	stage.HTMLFiles = append(stage.HTMLFiles, "S1_custom_plot.html", "S1_copy_NanoPlot-report.html")
	cfg.Krona.File = "other_krona.html"

	result := NewValidator(ValidationConfig{ValidateNaming: true}).Validate(cfg)

	for _, kind := range []string{"UNKNOWN_PLOT", "DUPLICATE_PLOT", "SAMPLE_ID_MISMATCH"} {
		if !hasWarning(result, kind) {
			t.Errorf("expected %s warning, got %v", kind, result.Warnings)
		}
	}
	if hasWarning(result, "FILE_MISSING") {
		t.Error("expected reference checks to be off")
	}
}

func TestValidateNoStages(t *testing.T) {
	_, cfg := testutil.TRANARun(t, "S1")
	cfg.FastQC, cfg.Krona, cfg.MultiQC, cfg.NanoPlot, cfg.Results = nil, nil, nil, nil, nil

	result := DefaultValidator().Validate(cfg)
	if !hasWarning(result, "NO_STAGES") {
		t.Errorf("expected NO_STAGES warning, got %v", result.Warnings)
	}
}

func TestValidateFile(t *testing.T) {
	path, cleanup := testutil.TempFile(t, "bad.yaml", "sample: {sample_id: s}\n")
	defer cleanup()

	result := DefaultValidator().ValidateFile(path)
	if result.IsValid {
		t.Fatal("expected invalid result for incomplete config")
	}
	if result.Errors[0].Type != "INVALID_CONFIG" {
		t.Errorf("expected INVALID_CONFIG, got %v", result.Errors)
	}

	_, cfg := testutil.TRANARun(t, "S1")
	good := filepath.Join(t.TempDir(), "S1.yaml")
	testutil.RequireNoError(t, cfg.Save(good), "Save")

	if result := DefaultValidator().ValidateFile(good); !result.IsValid {
		t.Errorf("expected saved config to validate, got %v", result.Errors)
	}
}
