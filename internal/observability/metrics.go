package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// alert summary service.
type Metrics struct {
	MessagesConsumed  prometheus.Counter
	SummariesProduced prometheus.Counter
	PipelineRunning   prometheus.Gauge

	// Engine metrics.
	RunDuration   prometheus.Histogram
	RunFailures   *prometheus.CounterVec // label: kind
	ParsedAlerts  *prometheus.CounterVec // label: dialect={json,xml}
	CitiesMatched prometheus.Histogram
	ContourLevels prometheus.Histogram

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.MessagesConsumed,
		m.SummariesProduced,
		m.PipelineRunning,
		m.RunDuration,
		m.RunFailures,
		m.ParsedAlerts,
		m.CitiesMatched,
		m.ContourLevels,
		m.BatchSize,
		m.BatchProcessingDuration,
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
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_summary",
			Name:      "messages_consumed_total",
			Help:      "Total alert messages read from the source topic.",
		}),
		SummariesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "alert_summary",
			Name:      "summaries_produced_total",
			Help:      "Total summary artifacts written to the sink topic.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "alert_summary",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_summary",
			Name:      "run_duration_seconds",
			Help:      "Duration of one parse-reconcile-derive-assemble run.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		RunFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alert_summary",
			Name:      "run_failures_total",
			Help:      "Terminal run failures by error kind.",
		}, []string{"kind"}),
		ParsedAlerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alert_summary",
			Name:      "parsed_alerts_total",
			Help:      "Successfully parsed alert messages by dialect.",
		}, []string{"dialect"}),
		CitiesMatched: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_summary",
			Name:      "cities_matched",
			Help:      "Number of affected cities per report.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
		ContourLevels: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_summary",
			Name:      "contour_levels",
			Help:      "Number of intensity contour levels per report.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9},
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_summary",
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from the source.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "alert_summary",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-summarize-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
