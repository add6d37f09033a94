// Package prometheus holds the Prometheus implementations of the metric
// interfaces defined by the recording packages. Importing it registers the
// constructors with pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/photovault/pkg/metrics"
	"github.com/marmos91/photovault/pkg/objectstore"
)

func init() {
	metrics.RegisterObjectStoreMetricsConstructor(NewObjectStoreMetrics)
}

// objectStoreMetrics is the Prometheus implementation of objectstore.Metrics.
type objectStoreMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewObjectStoreMetrics creates a new Prometheus-backed objectstore.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewObjectStoreMetrics() objectstore.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &objectStoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_objectstore_operations_total",
				Help: "Total number of object store operations by operation, bucket, and status",
			},
			[]string{"operation", "bucket", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "photovault_objectstore_operation_duration_milliseconds",
				Help: "Duration of object store operations in milliseconds",
				Buckets: []float64{
					10,    // 10ms - head/delete on a warm endpoint
					50,    // 50ms - thumbnails
					100,   // 100ms
					500,   // 500ms - typical photo upload
					1000,  // 1s
					5000,  // 5s - large RAW files
					10000, // 10s
					30000, // 30s - retried uploads
				},
			},
			[]string{"operation", "bucket"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_objectstore_bytes_transferred_total",
				Help: "Total bytes moved through the object store",
			},
			[]string{"operation", "bucket"},
		),
	}
}

func (m *objectStoreMetrics) ObserveOperation(operation, bucket string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(operation, bucket, status).Inc()
	m.operationDuration.WithLabelValues(operation, bucket).Observe(duration.Seconds() * 1000)
}

func (m *objectStoreMetrics) RecordBytes(operation, bucket string, bytes int64) {
	if m == nil || bytes <= 0 {
		return
	}

	m.bytesTransferred.WithLabelValues(operation, bucket).Add(float64(bytes))
}
