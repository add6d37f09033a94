package metrics

import (
	"github.com/marmos91/photovault/pkg/objectstore"
)

// NewObjectStoreMetrics creates a Prometheus-backed objectstore.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers pass nil to the object store client,
// which results in zero overhead.
func NewObjectStoreMetrics() objectstore.Metrics {
	if !IsEnabled() || newPrometheusObjectStoreMetrics == nil {
		return nil
	}
	return newPrometheusObjectStoreMetrics()
}

// newPrometheusObjectStoreMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusObjectStoreMetrics func() objectstore.Metrics

// RegisterObjectStoreMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterObjectStoreMetricsConstructor(constructor func() objectstore.Metrics) {
	newPrometheusObjectStoreMetrics = constructor
}
