package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/photovault/pkg/metrics"
	"github.com/marmos91/photovault/pkg/processor"
)

func init() {
	metrics.RegisterProcessorMetricsConstructor(NewProcessorMetrics)
}

// processorMetrics is the Prometheus implementation of processor.Metrics.
type processorMetrics struct {
	processedTotal  *prometheus.CounterVec
	processDuration *prometheus.HistogramVec
}

// NewProcessorMetrics creates a new Prometheus-backed processor.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewProcessorMetrics() processor.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &processorMetrics{
		processedTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_processor_files_total",
				Help: "Total number of processed files by worker kind and status",
			},
			[]string{"kind", "status"},
		),
		processDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "photovault_processor_duration_milliseconds",
				Help: "Per-file processing duration in milliseconds",
				Buckets: []float64{
					50,    // 50ms - small jpeg
					200,   // 200ms
					500,   // 500ms - typical phone photo
					2000,  // 2s - large raw or heic
					10000, // 10s
					60000, // 60s - pathological input
				},
			},
			[]string{"kind", "status"},
		),
	}
}

func (m *processorMetrics) ObserveProcess(kind string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	m.processedTotal.WithLabelValues(kind, status).Inc()
	m.processDuration.WithLabelValues(kind, status).Observe(float64(duration.Milliseconds()))
}
