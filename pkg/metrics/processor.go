package metrics

import (
	"github.com/marmos91/photovault/pkg/processor"
)

// NewProcessorMetrics creates a Prometheus-backed processor.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewProcessorMetrics() processor.Metrics {
	if !IsEnabled() || newPrometheusProcessorMetrics == nil {
		return nil
	}
	return newPrometheusProcessorMetrics()
}

// newPrometheusProcessorMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusProcessorMetrics func() processor.Metrics

// RegisterProcessorMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterProcessorMetricsConstructor(constructor func() processor.Metrics) {
	newPrometheusProcessorMetrics = constructor
}
