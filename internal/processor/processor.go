// Package processor assembles the SampleData record of one sample from
// the artifacts its pipeline run left on disk.
package processor

import (
	"path/filepath"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/parser"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/spike"
)

// SampleProcessor walks the stages of a sample configuration.
type SampleProcessor struct {
	cfg       *config.SampleConfig
	detector  *spike.Detector
	observers []Observer
	stats     Stats
}

// Option configures a SampleProcessor.
type Option func(*SampleProcessor)

// WithSpikeDetector replaces the detector built from the default spike list.
func WithSpikeDetector(d *spike.Detector) Option {
	return func(p *SampleProcessor) {
		p.detector = d
	}
}

// WithObserver adds an observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(p *SampleProcessor) {
		if o != nil {
			p.observers = append(p.observers, o)
		}
	}
}

// New creates a processor for a validated sample configuration.
func New(cfg *config.SampleConfig, opts ...Option) *SampleProcessor {
	p := &SampleProcessor{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.detector == nil {
		p.detector = spike.NewDetector(config.DefaultSpikeSpecies)
	}
	p.observers = append([]Observer{statsObserver{stats: &p.stats}}, p.observers...)
	return p
}

// Stats returns the counters of the last Process call.
func (p *SampleProcessor) Stats() Stats {
	return p.stats
}

// Process locates and parses every enabled stage and returns the sample
// record. Missing or unparsable artifacts leave their fields empty.
func (p *SampleProcessor) Process() *models.SampleData {
	p.stats = Stats{}
	root := p.cfg.RunRoot()

	data := &models.SampleData{SampleInfo: p.cfg.Sample}

	if s := p.cfg.FastQC; s != nil && s.IsEnabled() {
		data.FastQCFile = p.locate(ArtifactFastQC, root, s.Directory, s.File)
	}
	if s := p.cfg.Krona; s != nil && s.IsEnabled() {
		data.KronaFile = p.locate(ArtifactKrona, root, s.Directory, s.File)
	}
	if s := p.cfg.MultiQC; s != nil && s.IsEnabled() {
		data.MultiQCFile = p.locate(ArtifactMultiQC, root, s.Directory, s.ReportFile)
	}

	if np := p.cfg.NanoPlot; np != nil {
		structured := &models.StructuredNanoPlot{}
		enabled := false

		if s := np.Unprocessed; s != nil && s.IsEnabled() {
			enabled = true
			data.NanoPlotUnprocessed = p.locateNanoPlot(ArtifactNanoPlotUnprocessed, root, s)
			data.NanoStatsUnprocessed = p.readNanoStats(ArtifactNanoStatsUnprocessed, root, s)
			structured.Unprocessed = parser.BuildNanoPlotFileSet(root, s)
		}
		if s := np.Processed; s != nil && s.IsEnabled() {
			enabled = true
			data.NanoPlotProcessed = p.locateNanoPlot(ArtifactNanoPlotProcessed, root, s)
			data.NanoStatsProcessed = p.readNanoStats(ArtifactNanoStatsProcessed, root, s)
			structured.Processed = parser.BuildNanoPlotFileSet(root, s)
		}

		if enabled {
			data.NanoPlot = structured
		}
	}

	if s := p.cfg.Results; s != nil && s.IsEnabled() {
		data.TaxonomicAbundances = p.readAbundances(root, s)
		p.each(func(o Observer) {
			o.TaxonomicRows(len(data.TaxonomicAbundances), len(data.Contaminants()))
		})

		if name, ok := p.detector.Detect(data.TaxonomicAbundances); ok {
			data.Spike = &name
			p.each(func(o Observer) { o.SpikeDetected(name) })
		}
	}

	return data
}

func (p *SampleProcessor) each(fn func(Observer)) {
	for _, o := range p.observers {
		fn(o)
	}
}

func (p *SampleProcessor) locate(kind Artifact, root, dir, file string) *string {
	rel, ok := parser.Locate(root, dir, file)
	if !ok {
		missing := filepath.Join(dir, file)
		p.each(func(o Observer) { o.ArtifactMissing(kind, missing) })
		return nil
	}
	p.each(func(o Observer) { o.ArtifactFound(kind, rel) })
	return &rel
}

func (p *SampleProcessor) locateNanoPlot(kind Artifact, root string, stage *config.NanoPlotStage) map[string]string {
	found := parser.LocateNanoPlotFiles(root, stage)
	for _, name := range stage.HTMLFiles {
		if rel, ok := found[name]; ok {
			p.each(func(o Observer) { o.ArtifactFound(kind, rel) })
		} else {
			missing := filepath.Join(stage.Directory, name)
			p.each(func(o Observer) { o.ArtifactMissing(kind, missing) })
		}
	}
	return found
}

func (p *SampleProcessor) readNanoStats(kind Artifact, root string, stage *config.NanoPlotStage) *models.NanoStats {
	rel := p.locate(kind, root, stage.Directory, stage.StatsFile)
	if rel == nil {
		return nil
	}

	stats, err := parser.ReadNanoStats(root, stage.Directory, stage.StatsFile)
	if err != nil {
		errors.LogAndContinueWith("parsing NanoStats", err, *rel)
		p.each(func(o Observer) { o.ParseFailed(kind, *rel, err) })
		return nil
	}
	return stats
}

func (p *SampleProcessor) readAbundances(root string, stage *config.ResultsStage) []models.TaxonomicAbundance {
	rel := p.locate(ArtifactAbundance, root, stage.Directory, stage.RelAbundanceFile)
	if rel == nil {
		return nil
	}

	rows, err := parser.ReadTaxonomicAbundances(root, stage.Directory, stage.RelAbundanceFile)
	if err != nil {
		errors.LogAndContinueWith("parsing abundance table", err, *rel)
		p.each(func(o Observer) { o.ParseFailed(ArtifactAbundance, *rel, err) })
		return nil
	}
	return rows
}
