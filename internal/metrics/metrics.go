package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the review service. All
// methods are no-ops on a nil *Metrics.
type Metrics struct {
	importsTotal      *prometheus.CounterVec
	importDuration    *prometheus.HistogramVec
	skippedCandidates *prometheus.CounterVec
	exportsTotal      *prometheus.CounterVec
	storeLatency      *prometheus.HistogramVec
	storeConflicts    prometheus.Counter
	layerHits         *prometheus.CounterVec
	layerMisses       *prometheus.CounterVec
	layerSize         *prometheus.GaugeVec
	loadedModels      prometheus.Gauge
	commentedElements prometheus.Gauge
}

// NewMetrics creates and registers all collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		importsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_imports_total",
				Help: "Model imports by source format and outcome",
			},
			[]string{"format", "outcome"},
		),
		importDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "review_import_duration_ms",
				Help:    "Time to fetch and normalize a model in milliseconds",
				Buckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 15000, 60000},
			},
			[]string{"format"},
		),
		skippedCandidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_skipped_candidates_total",
				Help: "Entities or records dropped during normalization, by stage",
			},
			[]string{"stage"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_exports_total",
				Help: "Report exports by outcome",
			},
			[]string{"outcome"},
		),
		storeLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "review_store_latency_ms",
				Help:    "Content store operation latency in milliseconds",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"backend", "operation"},
		),
		storeConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "review_store_conflicts_total",
				Help: "Writes rejected because the stored content changed",
			},
		),
		layerHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_revision_cache_hits_total",
				Help: "Revision cache hits per layer",
			},
			[]string{"layer"},
		),
		layerMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "review_revision_cache_misses_total",
				Help: "Revision cache misses per layer",
			},
			[]string{"layer"},
		),
		layerSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "review_revision_cache_size_bytes",
				Help: "Bytes held by each revision cache layer",
			},
			[]string{"layer"},
		),
		loadedModels: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "review_loaded_models",
				Help: "Models currently federated in the session",
			},
		),
		commentedElements: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "review_commented_elements",
				Help: "Elements with a non-empty comment thread",
			},
		),
	}
}

func (m *Metrics) RecordImport(format, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.importsTotal.WithLabelValues(format, outcome).Inc()
	m.importDuration.WithLabelValues(format).Observe(ms(d))
}

func (m *Metrics) RecordSkipped(stage string) {
	if m == nil {
		return
	}
	m.skippedCandidates.WithLabelValues(stage).Inc()
}

func (m *Metrics) RecordExport(outcome string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStore records the latency of one content store call.
func (m *Metrics) ObserveStore(backend, operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(backend, operation).Observe(ms(d))
}

func (m *Metrics) RecordConflict() {
	if m == nil {
		return
	}
	m.storeConflicts.Inc()
}

func (m *Metrics) CacheHit(layer string) {
	if m == nil {
		return
	}
	m.layerHits.WithLabelValues(layer).Inc()
}

func (m *Metrics) CacheMiss(layer string) {
	if m == nil {
		return
	}
	m.layerMisses.WithLabelValues(layer).Inc()
}

func (m *Metrics) SetCacheSize(layer string, bytes int64) {
	if m == nil {
		return
	}
	m.layerSize.WithLabelValues(layer).Set(float64(bytes))
}

// SetSessionGauges publishes the size of the federated session.
func (m *Metrics) SetSessionGauges(models, commented int) {
	if m == nil {
		return
	}
	m.loadedModels.Set(float64(models))
	m.commentedElements.Set(float64(commented))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
