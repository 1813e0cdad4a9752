package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingest and query paths.
type Metrics struct {
	UploadsTotal *prometheus.CounterVec // labels: status={accepted,rejected,failed}
	UploadRows   prometheus.Histogram

	QueriesTotal *prometheus.CounterVec // labels: endpoint={plants,states}

	// Consolidation metrics.
	CacheLookups          *prometheus.CounterVec // labels: result={hit,miss}
	ConsolidationDuration prometheus.Histogram
	ConsolidationErrors   prometheus.Counter
	DatasetRows           prometheus.Gauge
	BlobsConsolidated     prometheus.Histogram

	AuditPublished *prometheus.CounterVec // labels: sink={log,kafka}, outcome={success,error}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UploadsTotal,
		m.UploadRows,
		m.QueriesTotal,
		m.CacheLookups,
		m.ConsolidationDuration,
		m.ConsolidationErrors,
		m.DatasetRows,
		m.BlobsConsolidated,
		m.AuditPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant_api",
			Name:      "uploads_total",
			Help:      "File uploads by outcome.",
		}, []string{"status"}),
		UploadRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plant_api",
			Name:      "upload_rows",
			Help:      "Rows surviving cleaning per accepted upload.",
			Buckets:   []float64{10, 100, 1000, 5000, 10000, 25000, 50000},
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant_api",
			Name:      "queries_total",
			Help:      "Aggregate queries served by endpoint.",
		}, []string{"endpoint"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant_api",
			Name:      "dataset_cache_lookups_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		ConsolidationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plant_api",
			Name:      "consolidation_duration_seconds",
			Help:      "Duration of a full list-fetch-normalize pass over the store.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		ConsolidationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "plant_api",
			Name:      "consolidation_errors_total",
			Help:      "Consolidation attempts aborted by a store or decode failure.",
		}),
		DatasetRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "plant_api",
			Name:      "dataset_rows",
			Help:      "Rows in the most recently consolidated dataset.",
		}),
		BlobsConsolidated: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "plant_api",
			Name:      "blobs_consolidated",
			Help:      "Stored files merged per consolidation pass.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100},
		}),
		AuditPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "plant_api",
			Name:      "audit_events_total",
			Help:      "Audit events recorded by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
