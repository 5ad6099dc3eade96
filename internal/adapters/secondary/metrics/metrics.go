// Package metrics exposes analysis and HTTP counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sensor-anomaly-service/internal/core/domain"
)

type Metrics struct {
	analysesTotal    *prometheus.CounterVec
	failuresTotal    *prometheus.CounterVec
	rowsScored       prometheus.Counter
	anomalousRows    prometheus.Counter
	modelBypassTotal prometheus.Counter
	analysisDuration prometheus.Histogram

	HTTPRequestsTotal *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New registers every collector on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		analysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_analyses_total",
			Help: "Completed analyses by dataset verdict",
		}, []string{"verdict"}),
		failuresTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_analysis_failures_total",
			Help: "Failed analyses by pipeline stage",
		}, []string{"stage"}),
		rowsScored: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_rows_scored_total",
			Help: "Total number of rows classified",
		}),
		anomalousRows: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_anomalous_rows_total",
			Help: "Total number of rows with final status Anomaly",
		}),
		modelBypassTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "sensor_model_bypass_total",
			Help: "Analyses that skipped the statistical model because of the file name",
		}),
		analysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sensor_analysis_duration_seconds",
			Help:    "Duration of the full analysis pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) ObserveAnalysis(run *domain.AnalysisRun) {
	m.analysesTotal.WithLabelValues(string(run.Verdict)).Inc()
	m.rowsScored.Add(float64(run.RowCount))
	m.anomalousRows.Add(float64(run.AnomalyCount))
	if run.ModelBypassed {
		m.modelBypassTotal.Inc()
	}
	m.analysisDuration.Observe(float64(run.DurationMS) / 1000)
}

func (m *Metrics) ObserveFailure(stage string) {
	m.failuresTotal.WithLabelValues(stage).Inc()
}
