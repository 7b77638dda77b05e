package parser

import (
	"strings"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/config"
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/models"
)

// nanoPlotRules are checked in order and the first match wins.
var nanoPlotRules = []struct {
	pattern string
	slot    models.NanoPlotSlot
}{
	{"NanoPlot-report.html", models.SlotReport},
	{"LengthvsQualityScatterPlot_dot.html", models.SlotScatterDot},
	{"LengthvsQualityScatterPlot_kde.html", models.SlotScatterKDE},
	{"Non_weightedHistogramReadlength.html", models.SlotHistogramUnweighted},
	{"WeightedHistogramReadlength.html", models.SlotHistogramWeighted},
	{"Yield_By_Length.html", models.SlotYieldByLength},
}

// ClassifyNanoPlotFile returns the slot a NanoPlot file belongs to.
func ClassifyNanoPlotFile(filename string) (models.NanoPlotSlot, bool) {
	for _, rule := range nanoPlotRules {
		if strings.Contains(filename, rule.pattern) {
			return rule.slot, true
		}
	}
	return 0, false
}

// LocateNanoPlotFiles lists the configured HTML files of a stage that
// exist, keyed by filename.
func LocateNanoPlotFiles(runRoot string, stage *config.NanoPlotStage) map[string]string {
	if stage == nil || !stage.IsEnabled() {
		return nil
	}

	found := make(map[string]string)
	for _, name := range stage.HTMLFiles {
		if rel, ok := Locate(runRoot, stage.Directory, name); ok {
			found[name] = rel
		}
	}
	return found
}

// BuildNanoPlotFileSet assigns the existing HTML files of a stage to
// their slots. Files matching no slot are dropped. A disabled or absent
// stage yields nil.
func BuildNanoPlotFileSet(runRoot string, stage *config.NanoPlotStage) *models.NanoPlotFileSet {
	if stage == nil || !stage.IsEnabled() {
		return nil
	}

	set := &models.NanoPlotFileSet{}
	for _, name := range stage.HTMLFiles {
		slot, ok := ClassifyNanoPlotFile(name)
		if !ok {
			continue
		}
		if rel, found := Locate(runRoot, stage.Directory, name); found {
			set.Set(slot, rel)
		}
	}
	return set
}
