package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Analysis metrics.
	Analyses         *prometheus.CounterVec // labels: view, metric
	EmptyAnalyses    prometheus.Counter
	AnalysisDuration prometheus.Histogram
	Exports          *prometheus.CounterVec // labels: format

	// Request pipeline metrics.
	RequestsConsumed prometheus.Counter
	ReportsProduced  prometheus.Counter
	RequestErrors    prometheus.Counter
	PipelineRunning  prometheus.Gauge
	BatchSize        prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates the metrics and registers them with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := NewMetricsForTesting()

	reg.MustRegister(
		m.Analyses,
		m.EmptyAnalyses,
		m.AnalysisDuration,
		m.Exports,
		m.RequestsConsumed,
		m.ReportsProduced,
		m.RequestErrors,
		m.PipelineRunning,
		m.BatchSize,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, so tests can
// build as many as they like without "already registered" panics.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "analyses_total",
			Help:      "Analyses run, by view and metric.",
		}, []string{"view", "metric"}),
		EmptyAnalyses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "empty_analyses_total",
			Help:      "Analyses whose view selected no sites.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "h2sites",
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a select-rank-format pass.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "exports_total",
			Help:      "Documents exported, by format.",
		}, []string{"format"}),
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "requests_consumed_total",
			Help:      "Analysis requests read from the request topic.",
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "reports_produced_total",
			Help:      "Reports written to the report topic.",
		}),
		RequestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "h2sites",
			Name:      "request_errors_total",
			Help:      "Analysis requests that could not be decoded or rendered.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "h2sites",
			Name:      "pipeline_running",
			Help:      "1 when the request pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "h2sites",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
	}
}
