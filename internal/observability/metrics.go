package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "journeys"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// aggregation pipeline.
type Metrics struct {
	RecordsRead        prometheus.Counter
	DataErrors         *prometheus.CounterVec // labels: stage={extract,transform,normalize}
	SnapshotsPublished prometheus.Counter
	LoadErrors         *prometheus.CounterVec // labels: loader
	PipelineRunning    prometheus.Gauge
	RunDuration        prometheus.Histogram

	// Geocoding metrics.
	CoordinatesFilled prometheus.Counter
	GeocodeCache      *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		RecordsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_read_total",
			Help:      "Total journey records read from the input table.",
		}),
		DataErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_errors_total",
			Help:      "Input validation failures by pipeline stage.",
		}, []string{"stage"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Total snapshots handed to loaders.",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Loader failures by loader name.",
		}, []string{"loader"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CoordinatesFilled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coordinates_filled_total",
			Help:      "Missing coordinates resolved through geocoding.",
		}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RecordsRead,
		m.DataErrors,
		m.SnapshotsPublished,
		m.LoadErrors,
		m.PipelineRunning,
		m.RunDuration,
		m.CoordinatesFilled,
		m.GeocodeCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
