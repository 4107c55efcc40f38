package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crime_forecast"

// Metrics holds the Prometheus collectors for forecasting, the 311 feed and
// bulk import.
type Metrics struct {
	Queries       *prometheus.CounterVec // labels: outcome={success,error}
	QueryDuration prometheus.Histogram
	CrimesLoaded  prometheus.Histogram

	FeedPages     prometheus.Counter
	FeedErrors    prometheus.Counter
	SnapshotReads *prometheus.CounterVec // labels: result={hit,miss,expired}

	ImportedRows prometheus.Counter
	SkippedRows  prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		Queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Beat forecast queries by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Duration of a complete beat forecast.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CrimesLoaded: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "crimes_loaded",
			Help:      "Crime records loaded per beat query.",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 7),
		}),
		FeedPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open311_pages_fetched_total",
			Help:      "Open311 pages fetched from the remote feed.",
		}),
		FeedErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open311_fetch_errors_total",
			Help:      "Failed Open311 feed fetches.",
		}),
		SnapshotReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "open311_snapshot_reads_total",
			Help:      "Open311 snapshot lookups by result.",
		}, []string{"result"}),
		ImportedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_inserted_total",
			Help:      "CSV rows inserted into the crime store.",
		}),
		SkippedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_skipped_total",
			Help:      "CSV rows skipped as empty, invalid or too old.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Queries,
		m.QueryDuration,
		m.CrimesLoaded,
		m.FeedPages,
		m.FeedErrors,
		m.SnapshotReads,
		m.ImportedRows,
		m.SkippedRows,
	)
	return m
}

// NewMetricsForTesting returns unregistered metrics so tests can create
// as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
