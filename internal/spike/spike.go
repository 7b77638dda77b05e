// Package spike recognises spike-in control organisms among the
// taxonomic hits of a sample.
package spike

import (
	"sort"
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// Detector matches species names against a configured spike list.
type Detector struct {
	species map[string]struct{}
}

// NewDetector builds a detector for the given spike species names.
func NewDetector(species []string) *Detector {
	d := &Detector{species: make(map[string]struct{}, len(species))}
	for _, s := range species {
		if key := normalize(s); key != "" {
			d.species[key] = struct{}{}
		}
	}
	return d
}

// IsSpike reports whether name is a configured spike species. Matching
// ignores case and surrounding whitespace but is otherwise exact.
func (d *Detector) IsSpike(name string) bool {
	_, ok := d.species[normalize(name)]
	return ok
}

// Detect returns the species of the most abundant spike row. Rows of
// equal abundance keep their file order.
func (d *Detector) Detect(rows []models.TaxonomicAbundance) (string, bool) {
	if len(rows) == 0 || len(d.species) == 0 {
		return "", false
	}

	ordered := make([]models.TaxonomicAbundance, len(rows))
	copy(ordered, rows)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Abundance > ordered[j].Abundance
	})

	for _, row := range ordered {
		if d.IsSpike(row.Species) {
			return row.Species, true
		}
	}
	return "", false
}

// Species returns the number of configured spike species.
func (d *Detector) Species() int {
	return len(d.species)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
