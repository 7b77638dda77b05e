// Package metrics exports the counters of one popup run in the
// Prometheus text format, for the node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/processor"
	"github.com/prometheus/client_golang/prometheus"
)

// Artifact outcomes.
const (
	StatusFound   = "found"
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

// Recorder collects the metrics of a single sample. It implements
// processor.Observer.
type Recorder struct {
	registry *prometheus.Registry

	artifacts      *prometheus.CounterVec
	taxonomicRows  prometheus.Gauge
	contaminants   prometheus.Gauge
	spikeDetected  prometheus.Gauge
	uploads        *prometheus.CounterVec
	uploadDuration prometheus.Histogram
	lastRun        prometheus.Gauge
}

// NewRecorder creates a recorder whose series carry sampleID as a label.
func NewRecorder(sampleID string) *Recorder {
	labels := prometheus.Labels{"sample_id": sampleID}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		artifacts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "popup_artifacts_total",
			Help:        "Pipeline artifacts looked up, by kind and outcome.",
			ConstLabels: labels,
		}, []string{"kind", "status"}),
		taxonomicRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "popup_taxonomic_rows",
			Help:        "Taxonomic hits parsed from the abundance table.",
			ConstLabels: labels,
		}),
		contaminants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "popup_contaminants",
			Help:        "Taxonomic hits flagged as contamination.",
			ConstLabels: labels,
		}),
		spikeDetected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "popup_spike_detected",
			Help:        "1 when a spike-in species was found.",
			ConstLabels: labels,
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "popup_uploads_total",
			Help:        "Upload attempts, by action and result.",
			ConstLabels: labels,
		}, []string{"action", "result"}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "popup_upload_duration_seconds",
			Help:        "Time spent talking to the tracking service.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "popup_last_run_timestamp_seconds",
			Help:        "Unix time of the last popup run.",
			ConstLabels: labels,
		}),
	}

	r.registry.MustRegister(r.artifacts, r.taxonomicRows, r.contaminants,
		r.spikeDetected, r.uploads, r.uploadDuration, r.lastRun)
	r.lastRun.SetToCurrentTime()

	return r
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ArtifactFound(kind processor.Artifact, _ string) {
	r.artifacts.WithLabelValues(string(kind), StatusFound).Inc()
}

func (r *Recorder) ArtifactMissing(kind processor.Artifact, _ string) {
	r.artifacts.WithLabelValues(string(kind), StatusMissing).Inc()
}

func (r *Recorder) ParseFailed(kind processor.Artifact, _ string, _ error) {
	r.artifacts.WithLabelValues(string(kind), StatusFailed).Inc()
}

func (r *Recorder) TaxonomicRows(count, contaminants int) {
	r.taxonomicRows.Set(float64(count))
	r.contaminants.Set(float64(contaminants))
}

func (r *Recorder) SpikeDetected(string) {
	r.spikeDetected.Set(1)
}

// ObserveUpload records the outcome of an upload attempt.
func (r *Recorder) ObserveUpload(action string, ok bool, d time.Duration) {
	if action == "" {
		action = "none"
	}
	result := "failure"
	if ok {
		result = "success"
	}
	r.uploads.WithLabelValues(action, result).Inc()
	r.uploadDuration.Observe(d.Seconds())
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
