package testutil

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
)

// NanoStatsReport is a NanoStats report as NanoPlot writes it.
const NanoStatsReport = `General summary:         
Mean read length:                  1,234.5
Mean read quality:                    12.3
Median read length:                1,100.0
Median read quality:                  12.8
Number of reads:                  10,000.0
Read length N50:                   1,450.0
STDEV read length:                   321.7
Total bases:                  12,345,000.0
Number, percentage and megabases of reads above quality cutoffs
>Q5:	9,900 (99.0%) 12.20Mb
>Q7:	9500 (95.0%) 11.80Mb
>Q10:	500 (12.34%) 1.50Mb
>Q12:	120 (1.2%) 0.30Mb
>Q15:	0 (0.0%) 0.0Mb
`

// AbundanceHeader is the header of a TRANA relative abundance table.
const AbundanceHeader = "species\ttax_id\tabundance\tgenus\tfamily\torder\tclass\tphylum\tsuperkingdom\testimated counts\tcontamination\n"

// AbundanceTable has one contaminant, one spike-in and two placeholder rows.
const AbundanceTable = AbundanceHeader +
	"Escherichia coli\t562\t0.62\tEscherichia\tEnterobacteriaceae\tEnterobacterales\tGammaproteobacteria\tPseudomonadota\tBacteria\t6200\tfalse\n" +
	"Cutibacterium acnes\t1747\t0.2\tCutibacterium\tPropionibacteriaceae\tPropionibacteriales\tActinomycetes\tActinomycetota\tBacteria\t2000\ttrue\n" +
	"Bacillus subtilis\t1423\t0.08\tBacillus\tBacillaceae\tBacillales\tBacilli\tBacillota\tBacteria\t800\tfalse\n" +
	"unmapped\t0\t0.07\t\t\t\t\t\t\t700\t\n" +
	"mapped_unclassified\t0\t0.03\t\t\t\t\t\t\t300\t\n"

// Run is a sequencing run directory created under a temporary base path.
type Run struct {
	t        *testing.T
	BasePath string
	Name     string
}

// NewRun creates an empty run directory named name.
func NewRun(t *testing.T, name string) *Run {
	t.Helper()
	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, name), 0755); err != nil {
		t.Fatalf("failed to create run directory: %v", err)
	}
	return &Run{t: t, BasePath: base, Name: name}
}

// Root returns the filesystem path of the run.
func (r *Run) Root() string {
	return filepath.Join(r.BasePath, r.Name)
}

// Write writes content to a run-relative path.
func (r *Run) Write(rel, content string) string {
	r.t.Helper()
	return WriteFile(r.t, r.Root(), rel, content)
}

// WriteGzip writes gzip-compressed content to a run-relative path.
func (r *Run) WriteGzip(rel, content string) string {
	r.t.Helper()
	path := filepath.Join(r.Root(), rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		r.t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(content)); err != nil {
		r.t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := zw.Close(); err != nil {
		r.t.Fatalf("failed to close gzip writer: %v", err)
	}
	return path
}

// TRANARun writes a complete TRANA output tree for sampleID and returns
// the run together with the matching generated sample config.
func TRANARun(t *testing.T, sampleID string) (*Run, *config.SampleConfig) {
	t.Helper()

	run := NewRun(t, "RUN001")
	cfg, err := config.GenerateSample(config.GenerateOptions{
		OutputDir: run.Root(),
		SampleID:  sampleID,
		RunID:     "RUN001",
	})
	if err != nil {
		t.Fatalf("failed to generate sample config: %v", err)
	}

	run.Write(filepath.Join(cfg.FastQC.Directory, cfg.FastQC.File), "<html>fastqc</html>")
	run.Write(filepath.Join(cfg.Krona.Directory, cfg.Krona.File), "<html>krona</html>")
	run.Write(filepath.Join(cfg.MultiQC.Directory, cfg.MultiQC.ReportFile), "<html>multiqc</html>")

	for _, stage := range []*config.NanoPlotStage{cfg.NanoPlot.Unprocessed, cfg.NanoPlot.Processed} {
		run.Write(filepath.Join(stage.Directory, stage.StatsFile), NanoStatsReport)
		for _, name := range stage.HTMLFiles {
			run.Write(filepath.Join(stage.Directory, name), "<html></html>")
		}
	}

	run.Write(filepath.Join(cfg.Results.Directory, cfg.Results.RelAbundanceFile), AbundanceTable)

	return run, cfg
}
