package main

import (
	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/processor"
)

// traceObserver prints one line per artifact as the sample is processed
type traceObserver struct{}

func (traceObserver) ArtifactFound(kind processor.Artifact, path string) {
	printSuccess("Found %s: %s", kind, path)
}

func (traceObserver) ArtifactMissing(kind processor.Artifact, path string) {
	printWarning("Missing %s: %s", kind, path)
}

func (traceObserver) ParseFailed(kind processor.Artifact, path string, err error) {
	printError("Could not parse %s (%s): %v", kind, path, err)
}

func (traceObserver) TaxonomicRows(count, contaminants int) {
	printInfo("Parsed %d taxonomic hits, %d flagged as contamination", count, contaminants)
}

func (traceObserver) SpikeDetected(species string) {
	printInfo("Spike-in detected: %s", species)
}
