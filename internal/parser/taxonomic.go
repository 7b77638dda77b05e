package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/errors"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// Column names of a relative abundance table.
const (
	colSpecies         = "species"
	colTaxID           = "tax_id"
	colAbundance       = "abundance"
	colGenus           = "genus"
	colFamily          = "family"
	colOrder           = "order"
	colClass           = "class"
	colPhylum          = "phylum"
	colSuperkingdom    = "superkingdom"
	colEstimatedCounts = "estimated counts"
	colContamination   = "contamination"
)

// excludedSpecies are placeholder rows that never become hits.
var excludedSpecies = map[string]bool{
	"":                    true,
	"unmapped":            true,
	"mapped_unclassified": true,
}

// contaminationValues are the cell values that flag a row as contamination.
var contaminationValues = map[string]bool{
	"true":          true,
	"1":             true,
	"yes":           true,
	"contamination": true,
}

// ParseTaxonomicAbundances reads a tab-delimited relative abundance table.
// Rows whose numeric cells cannot be parsed are skipped and reported;
// a header or read failure is returned as an error.
func ParseTaxonomicAbundances(r io.Reader) ([]models.TaxonomicAbundance, error) {
	const op errors.Op = "parser.ParseTaxonomicAbundances"

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.E(op, errors.KindParse, err, "failed to read header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	_, hasContamination := index[colContamination]

	scanner := errors.NewRowScanner("abundance rows")
	var rows []models.TaxonomicAbundance

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.E(op, errors.KindParse, err, fmt.Sprintf("failed to read line %d", line))
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		species := cell(colSpecies)
		if excludedSpecies[species] {
			continue
		}

		abundance, err := parseOptionalFloat(cell(colAbundance))
		if err != nil {
			scanner.RecordSkip(err, fmt.Sprintf("line %d (%s): abundance", line, species))
			continue
		}
		counts, err := parseOptionalFloat(cell(colEstimatedCounts))
		if err != nil {
			scanner.RecordSkip(err, fmt.Sprintf("line %d (%s): estimated counts", line, species))
			continue
		}

		rows = append(rows, models.TaxonomicAbundance{
			TaxID:           cell(colTaxID),
			Abundance:       abundance,
			Species:         species,
			Genus:           cell(colGenus),
			Family:          cell(colFamily),
			Order:           cell(colOrder),
			Class:           cell(colClass),
			Phylum:          cell(colPhylum),
			Superkingdom:    cell(colSuperkingdom),
			EstimatedCounts: counts,
			Contamination:   hasContamination && contaminationValues[strings.ToLower(cell(colContamination))],
		})
		scanner.RecordScan()
	}

	scanner.Report()
	return rows, nil
}

// ReadTaxonomicAbundances parses the table at runRoot/directory/filename.
// A missing table yields an empty slice and no error.
func ReadTaxonomicAbundances(runRoot, directory, filename string) ([]models.TaxonomicAbundance, error) {
	const op errors.Op = "parser.ReadTaxonomicAbundances"

	if filename == "" {
		return nil, nil
	}

	data, err := readArtifact(op, filepath.Join(runRoot, directory, filename))
	if err != nil || data == nil {
		return nil, err
	}

	rows, err := ParseTaxonomicAbundances(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(op, err)
	}
	return rows, nil
}

// parseOptionalFloat parses a numeric cell. Blank means 0; NaN and
// infinities are rejected since they cannot be encoded as JSON.
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}
