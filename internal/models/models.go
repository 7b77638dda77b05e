// Package models holds the in-memory records built while ingesting one
// sample's pipeline output.
package models

import (
	"encoding/json"
	"fmt"
)

// SampleInfo identifies a sample. It is copied verbatim from the sample
// configuration document.
type SampleInfo struct {
	SampleID           string `json:"sample_id" yaml:"sample_id"`
	SampleName         string `json:"sample_name" yaml:"sample_name"`
	LimsID             string `json:"lims_id" yaml:"lims_id"`
	SequencingRunID    string `json:"sequencing_run_id" yaml:"sequencing_run_id"`
	ClassificationType string `json:"classification_type" yaml:"classification_type"`
	Barcode            string `json:"barcode,omitempty" yaml:"barcode,omitempty"`
}

// QualityCutoff is one ">Q<n>:" row of a NanoStats report.
// It serializes as [count, percentage, megabases].
type QualityCutoff struct {
	Reads      int
	Percentage float64
	Megabases  float64
}

// MarshalJSON encodes the cutoff as a three element array.
func (q QualityCutoff) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{q.Reads, q.Percentage, q.Megabases})
}

// UnmarshalJSON decodes a three element array.
func (q *QualityCutoff) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("quality cutoff: expected 3 values, got %d", len(raw))
	}
	q.Reads = int(raw[0])
	q.Percentage = raw[1]
	q.Megabases = raw[2]
	return nil
}

// NanoStats holds read statistics from a NanoStats report. A nil field
// means the report did not contain that label.
type NanoStats struct {
	MeanReadLength    *float64                 `json:"mean_read_length,omitempty"`
	MeanReadQuality   *float64                 `json:"mean_read_quality,omitempty"`
	MedianReadLength  *float64                 `json:"median_read_length,omitempty"`
	MedianReadQuality *float64                 `json:"median_read_quality,omitempty"`
	NumberOfReads     *int                     `json:"number_of_reads,omitempty"`
	ReadLengthN50     *float64                 `json:"read_length_n50,omitempty"`
	StdevReadLength   *float64                 `json:"stdev_read_length,omitempty"`
	TotalBases        *float64                 `json:"total_bases,omitempty"`
	QualityCutoffs    map[string]QualityCutoff `json:"quality_cutoffs"`
}

// TaxonomicAbundance is one row of a relative abundance table.
type TaxonomicAbundance struct {
	TaxID           string  `json:"tax_id"`
	Abundance       float64 `json:"abundance"`
	Species         string  `json:"species"`
	Genus           string  `json:"genus"`
	Family          string  `json:"family"`
	Order           string  `json:"order"`
	Class           string  `json:"class"`
	Phylum          string  `json:"phylum"`
	Superkingdom    string  `json:"superkingdom"`
	EstimatedCounts float64 `json:"estimated_counts"`
	Contamination   bool    `json:"contamination"`
}

// NanoPlotSlot names one of the six NanoPlot visualizations.
type NanoPlotSlot int

const (
	SlotReport NanoPlotSlot = iota
	SlotScatterDot
	SlotScatterKDE
	SlotHistogramUnweighted
	SlotHistogramWeighted
	SlotYieldByLength
)

func (s NanoPlotSlot) String() string {
	switch s {
	case SlotReport:
		return "report"
	case SlotScatterDot:
		return "length_quality_scatter"
	case SlotScatterKDE:
		return "length_quality_kde"
	case SlotHistogramUnweighted:
		return "histogram_unweighted"
	case SlotHistogramWeighted:
		return "histogram_weighted"
	case SlotYieldByLength:
		return "yield_by_length"
	default:
		return "unknown"
	}
}

// NanoPlotFileSet holds run-relative paths of the NanoPlot files for one stage.
type NanoPlotFileSet struct {
	Report               *string `json:"report"`
	LengthQualityScatter *string `json:"length_quality_scatter"`
	LengthQualityKDE     *string `json:"length_quality_kde"`
	HistogramUnweighted  *string `json:"histogram_unweighted"`
	HistogramWeighted    *string `json:"histogram_weighted"`
	YieldByLength        *string `json:"yield_by_length"`
}

// Set stores path in the given slot.
func (fs *NanoPlotFileSet) Set(slot NanoPlotSlot, path string) {
	p := path
	switch slot {
	case SlotReport:
		fs.Report = &p
	case SlotScatterDot:
		fs.LengthQualityScatter = &p
	case SlotScatterKDE:
		fs.LengthQualityKDE = &p
	case SlotHistogramUnweighted:
		fs.HistogramUnweighted = &p
	case SlotHistogramWeighted:
		fs.HistogramWeighted = &p
	case SlotYieldByLength:
		fs.YieldByLength = &p
	}
}

// Map applies fn to every present path and returns the resulting set.
func (fs *NanoPlotFileSet) Map(fn func(string) string) *NanoPlotFileSet {
	if fs == nil {
		return nil
	}
	apply := func(p *string) *string {
		if p == nil {
			return nil
		}
		v := fn(*p)
		return &v
	}
	return &NanoPlotFileSet{
		Report:               apply(fs.Report),
		LengthQualityScatter: apply(fs.LengthQualityScatter),
		LengthQualityKDE:     apply(fs.LengthQualityKDE),
		HistogramUnweighted:  apply(fs.HistogramUnweighted),
		HistogramWeighted:    apply(fs.HistogramWeighted),
		YieldByLength:        apply(fs.YieldByLength),
	}
}

// Count returns the number of populated slots.
func (fs *NanoPlotFileSet) Count() int {
	if fs == nil {
		return 0
	}
	n := 0
	for _, p := range []*string{fs.Report, fs.LengthQualityScatter, fs.LengthQualityKDE,
		fs.HistogramUnweighted, fs.HistogramWeighted, fs.YieldByLength} {
		if p != nil {
			n++
		}
	}
	return n
}

// StructuredNanoPlot groups the NanoPlot file sets by processing stage.
type StructuredNanoPlot struct {
	Unprocessed *NanoPlotFileSet `json:"unprocessed"`
	Processed   *NanoPlotFileSet `json:"processed"`
}

// SampleData is the unified record produced by parsing one sample.
type SampleData struct {
	SampleInfo SampleInfo

	FastQCFile  *string
	KronaFile   *string
	MultiQCFile *string

	// Flat filename -> run-relative path listings of located NanoPlot files.
	NanoPlotUnprocessed map[string]string
	NanoPlotProcessed   map[string]string

	NanoStatsUnprocessed *NanoStats
	NanoStatsProcessed   *NanoStats

	TaxonomicAbundances []TaxonomicAbundance
	NanoPlot            *StructuredNanoPlot
	Spike               *string
}

// Contaminants returns the rows flagged as contamination, in file order.
func (d *SampleData) Contaminants() []TaxonomicAbundance {
	var out []TaxonomicAbundance
	for _, t := range d.TaxonomicAbundances {
		if t.Contamination {
			out = append(out, t)
		}
	}
	return out
}
