// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Market data metrics
	InstrumentsFetched prometheus.Counter
	FetchFailures      *prometheus.CounterVec
	ProviderRetries    prometheus.Counter

	// Pipeline metrics
	PipelineRunsTotal     *prometheus.CounterVec
	PipelineDuration      prometheus.Histogram
	SignalRecordsProduced prometheus.Counter
	TransitionsComputed   prometheus.Counter
	ReportsWritten        prometheus.Counter

	// Health metrics
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "fund_momentum_lab"
	}

	return &Metrics{
		InstrumentsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "instruments_fetched_total",
			Help:      "Total number of instrument histories fetched successfully",
		}),
		FetchFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "fetch_failures_total",
			Help:      "Total number of instrument fetches that failed, by ticker",
		}, []string{"ticker"}),
		ProviderRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketdata",
			Name:      "provider_retries_total",
			Help:      "Total number of retried provider requests",
		}),

		PipelineRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by outcome",
		}, []string{"outcome"}),
		PipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		SignalRecordsProduced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "signal_records_produced_total",
			Help:      "Total number of signal records produced",
		}),
		TransitionsComputed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "transitions_computed_total",
			Help:      "Total number of bucket transitions computed",
		}),
		ReportsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_written_total",
			Help:      "Total number of report files written",
		}),

		LastSuccessfulRun: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_run_timestamp",
			Help:      "Unix timestamp of the last completed pipeline run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordInstrumentFetched increments the fetched-instruments counter.
func RecordInstrumentFetched() {
	DefaultMetrics.InstrumentsFetched.Inc()
}

// RecordFetchFailure increments the fetch failure counter for ticker.
func RecordFetchFailure(ticker string) {
	DefaultMetrics.FetchFailures.WithLabelValues(ticker).Inc()
}

// RecordProviderRetry increments the retried-requests counter.
func RecordProviderRetry() {
	DefaultMetrics.ProviderRetries.Inc()
}

// RecordPipelineRun records one pipeline run with its outcome and duration.
func RecordPipelineRun(outcome string, seconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	DefaultMetrics.PipelineDuration.Observe(seconds)
}

// RecordSignalRecords adds to the produced-records counter.
func RecordSignalRecords(n int) {
	DefaultMetrics.SignalRecordsProduced.Add(float64(n))
}

// RecordTransitions adds to the computed-transitions counter.
func RecordTransitions(n int) {
	DefaultMetrics.TransitionsComputed.Add(float64(n))
}

// RecordReportWritten increments the written-reports counter.
func RecordReportWritten() {
	DefaultMetrics.ReportsWritten.Inc()
}
