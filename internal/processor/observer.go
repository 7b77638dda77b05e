package processor

// Artifact names one kind of pipeline output the processor looks for.
type Artifact string

const (
	ArtifactFastQC               Artifact = "fastqc"
	ArtifactKrona                Artifact = "krona"
	ArtifactMultiQC              Artifact = "multiqc"
	ArtifactNanoStatsUnprocessed Artifact = "nanostats_unprocessed"
	ArtifactNanoStatsProcessed   Artifact = "nanostats_processed"
	ArtifactNanoPlotUnprocessed  Artifact = "nanoplot_unprocessed"
	ArtifactNanoPlotProcessed    Artifact = "nanoplot_processed"
	ArtifactAbundance            Artifact = "rel_abundance"
)

// Observer is notified as the processor discovers and parses artifacts.
type Observer interface {
	ArtifactFound(kind Artifact, path string)
	ArtifactMissing(kind Artifact, path string)
	ParseFailed(kind Artifact, path string, err error)
	TaxonomicRows(count int, contaminants int)
	SpikeDetected(species string)
}

// Stats summarises one Process call.
type Stats struct {
	Found         int
	Missing       int
	ParseFailures int
	TaxonomicRows int
	Contaminants  int
	Spike         string
}

// statsObserver fills Stats from the observer callbacks.
type statsObserver struct {
	stats *Stats
}

func (o statsObserver) ArtifactFound(Artifact, string)   { o.stats.Found++ }
func (o statsObserver) ArtifactMissing(Artifact, string) { o.stats.Missing++ }

func (o statsObserver) ParseFailed(Artifact, string, error) { o.stats.ParseFailures++ }

func (o statsObserver) TaxonomicRows(count, contaminants int) {
	o.stats.TaxonomicRows = count
	o.stats.Contaminants = contaminants
}

func (o statsObserver) SpikeDetected(species string) { o.stats.Spike = species }
