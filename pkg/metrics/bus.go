package metrics

import (
	"github.com/marmos91/photovault/pkg/bus"
)

// NewBusMetrics creates a Prometheus-backed bus.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers pass nil to bus.Connect, which results
// in zero overhead.
func NewBusMetrics() bus.Metrics {
	if !IsEnabled() || newPrometheusBusMetrics == nil {
		return nil
	}
	return newPrometheusBusMetrics()
}

// newPrometheusBusMetrics is implemented in pkg/metrics/prometheus.
// The indirection avoids an import cycle while keeping the API clean.
var newPrometheusBusMetrics func() bus.Metrics

// RegisterBusMetricsConstructor registers the Prometheus constructor.
// Called by pkg/metrics/prometheus during package initialization.
func RegisterBusMetricsConstructor(constructor func() bus.Metrics) {
	newPrometheusBusMetrics = constructor
}
