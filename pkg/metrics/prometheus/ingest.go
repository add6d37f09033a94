package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/photovault/pkg/ingest"
	"github.com/marmos91/photovault/pkg/metrics"
)

func init() {
	metrics.RegisterIngestMetricsConstructor(NewIngestMetrics)
}

// ingestMetrics is the Prometheus implementation of ingest.Metrics.
type ingestMetrics struct {
	batchesTotal     *prometheus.CounterVec
	batchFiles       prometheus.Counter
	batchDuration    *prometheus.HistogramVec
	completionsTotal *prometheus.CounterVec
}

// NewIngestMetrics creates a new Prometheus-backed ingest.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewIngestMetrics() ingest.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &ingestMetrics{
		batchesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_ingest_batches_total",
				Help: "Total number of ingested batches by status",
			},
			[]string{"status"},
		),
		batchFiles: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "photovault_ingest_files_total",
				Help: "Total number of file descriptors received in batches",
			},
		),
		batchDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "photovault_ingest_batch_duration_milliseconds",
				Help: "Batch ingest duration in milliseconds",
				Buckets: []float64{
					10,    // 10ms - single-file reprocess batch
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms
					1000,  // 1s - full 250-file batch
					5000,  // 5s
					30000, // 30s - contended database
				},
			},
			[]string{"status"},
		),
		completionsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_ingest_completions_total",
				Help: "Total number of applied completion events by worker kind and status",
			},
			[]string{"kind", "status"},
		),
	}
}

func (m *ingestMetrics) ObserveBatch(size int, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.batchesTotal.WithLabelValues(status).Inc()
	m.batchFiles.Add(float64(size))
	m.batchDuration.WithLabelValues(status).Observe(duration.Seconds() * 1000)
}

func (m *ingestMetrics) RecordCompletion(kind string, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "error"
	}
	m.completionsTotal.WithLabelValues(kind, status).Inc()
}
