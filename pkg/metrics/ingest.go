package metrics

import (
	"github.com/marmos91/photovault/pkg/ingest"
)

// NewIngestMetrics creates a Prometheus-backed ingest.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewIngestMetrics() ingest.Metrics {
	if !IsEnabled() || newPrometheusIngestMetrics == nil {
		return nil
	}
	return newPrometheusIngestMetrics()
}

// newPrometheusIngestMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusIngestMetrics func() ingest.Metrics

// RegisterIngestMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterIngestMetricsConstructor(constructor func() ingest.Metrics) {
	newPrometheusIngestMetrics = constructor
}
