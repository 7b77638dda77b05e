// Package converter turns a parsed sample into the document the
// tracking service stores.
package converter

import (
	"math"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// QC states assigned at upload time.
const (
	QCUnprocessed = "unprocessed"
	QCFailed      = "failed"
)

// timestampLayout matches the naive ISO-8601 timestamps the tracking
// service already stores.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Payload is the upload document of one sample
type Payload struct {
	SampleName      string `json:"sample_name"`
	SampleID        string `json:"sample_id"`
	SequencingRunID string `json:"sequencing_run_id"`
	LimsID          string `json:"lims_id"`
	Classification  string `json:"classification"`
	QC              string `json:"qc"`
	Comments        string `json:"comments"`
	CreatedDate     string `json:"created_date"`
	UpdatedDate     string `json:"updated_date"`

	KronaFile   *string `json:"krona_file"`
	QualityPlot *string `json:"quality_plot"`

	Statistics    Statistics       `json:"statistics"`
	TaxonomicData TaxonomicSummary `json:"taxonomic_data"`

	NanoStatsProcessed   *models.NanoStats          `json:"nano_stats_processed"`
	NanoStatsUnprocessed *models.NanoStats          `json:"nano_stats_unprocessed"`
	NanoPlot             *models.StructuredNanoPlot `json:"nanoplot"`

	Spike *string `json:"spike"`
}

// Statistics is the flattened read summary shown in sample listings
type Statistics struct {
	TotalReads    *int     `json:"total_reads,omitempty"`
	AvgLength     *float64 `json:"avg_length,omitempty"`
	AvgQuality    *float64 `json:"avg_quality,omitempty"`
	TotalBases    *float64 `json:"total_bases,omitempty"`
	ReadLengthN50 *float64 `json:"read_length_n50,omitempty"`
}

// TaxonomicSummary summarises the taxonomic hits of a sample
type TaxonomicSummary struct {
	TotalSpecies         int   `json:"total_species"`
	ContaminantsDetected int   `json:"contaminants_detected"`
	Hits                 []Hit `json:"hits"`
}

// Hit is one species with its abundance in percent
type Hit struct {
	Species   string  `json:"species"`
	Abundance float64 `json:"abundance"`
	Genus     string  `json:"genus"`
	Family    string  `json:"family"`
}

// Converter builds payloads
type Converter struct {
	now func() time.Time
}

// Option configures a Converter
type Option func(*Converter)

// WithClock sets the clock used for created_date and updated_date
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// New creates a converter
func New(opts ...Option) *Converter {
	c := &Converter{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunDirectory returns the prefix for file references of a sample:
// run_directory when configured, otherwise the sequencing run id.
func RunDirectory(cfg *config.SampleConfig) string {
	return cfg.RunDir()
}

// Convert builds the upload payload for data. File references are
// prefixed with runDirectory; absent files stay null.
func (c *Converter) Convert(data *models.SampleData, runDirectory string) *Payload {
	info := data.SampleInfo
	now := c.now().Format(timestampLayout)
	prefix := pathPrefixer(runDirectory)

	contaminants := data.Contaminants()

	p := &Payload{
		SampleName:      info.SampleName,
		SampleID:        info.SampleID,
		SequencingRunID: info.SequencingRunID,
		LimsID:          info.LimsID,
		Classification:  info.ClassificationType,
		QC:              QCUnprocessed,
		CreatedDate:     now,
		UpdatedDate:     now,

		KronaFile:   prefixed(data.KronaFile, prefix),
		QualityPlot: prefixed(data.FastQCFile, prefix),

		Statistics:    statistics(data),
		TaxonomicData: summarize(data.TaxonomicAbundances, len(contaminants)),

		NanoStatsProcessed:   data.NanoStatsProcessed,
		NanoStatsUnprocessed: data.NanoStatsUnprocessed,
		Spike:                data.Spike,
	}

	var comments []string
	if len(contaminants) > 0 {
		p.QC = QCFailed
		names := make([]string, 0, len(contaminants))
		for _, t := range contaminants {
			names = append(names, t.Species)
		}
		comments = append(comments, "Potential contamination detected: "+strings.Join(names, ", "))
	}
	p.Comments = strings.Join(comments, "; ")

	if data.NanoPlot != nil {
		p.NanoPlot = &models.StructuredNanoPlot{
			Unprocessed: data.NanoPlot.Unprocessed.Map(prefix),
			Processed:   data.NanoPlot.Processed.Map(prefix),
		}
	}

	return p
}

// statistics prefers the processed stats over the unprocessed ones.
func statistics(data *models.SampleData) Statistics {
	stats := data.NanoStatsProcessed
	if stats == nil {
		stats = data.NanoStatsUnprocessed
	}
	if stats == nil {
		return Statistics{}
	}
	return Statistics{
		TotalReads:    stats.NumberOfReads,
		AvgLength:     stats.MeanReadLength,
		AvgQuality:    stats.MeanReadQuality,
		TotalBases:    stats.TotalBases,
		ReadLengthN50: stats.ReadLengthN50,
	}
}

func summarize(rows []models.TaxonomicAbundance, contaminants int) TaxonomicSummary {
	ordered := make([]models.TaxonomicAbundance, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Abundance > ordered[j].Abundance
	})

	hits := make([]Hit, 0, len(ordered))
	for _, t := range ordered {
		hits = append(hits, Hit{
			Species:   t.Species,
			Abundance: Percent(t.Abundance),
			Genus:     t.Genus,
			Family:    t.Family,
		})
	}

	return TaxonomicSummary{
		TotalSpecies:         len(rows),
		ContaminantsDetected: contaminants,
		Hits:                 hits,
	}
}

// Percent converts a fraction to a percentage rounded to two decimals.
func Percent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

func pathPrefixer(runDirectory string) func(string) string {
	runDirectory = strings.TrimSuffix(runDirectory, "/")
	return func(rel string) string {
		rel = filepath.ToSlash(rel)
		if runDirectory == "" {
			return rel
		}
		return runDirectory + "/" + rel
	}
}

func prefixed(path *string, prefix func(string) string) *string {
	if path == nil {
		return nil
	}
	v := prefix(*path)
	return &v
}
