package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/photovault/pkg/bus"
	"github.com/marmos91/photovault/pkg/metrics"
)

func init() {
	metrics.RegisterBusMetricsConstructor(NewBusMetrics)
}

// busMetrics is the Prometheus implementation of bus.Metrics.
type busMetrics struct {
	publishesTotal   *prometheus.CounterVec
	publishDuration  *prometheus.HistogramVec
	deliveriesTotal  *prometheus.CounterVec
	handlingDuration *prometheus.HistogramVec
}

// NewBusMetrics creates a new Prometheus-backed bus.Metrics.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewBusMetrics() bus.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &busMetrics{
		publishesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_bus_publishes_total",
				Help: "Total number of publishes by target and status",
			},
			[]string{"target", "status"},
		),
		publishDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "photovault_bus_publish_duration_milliseconds",
				Help: "Publish-to-confirm round-trip time in milliseconds",
				Buckets: []float64{
					1,    // 1ms - local broker
					5,    // 5ms
					10,   // 10ms
					50,   // 50ms
					100,  // 100ms
					500,  // 500ms - congested broker
					1000, // 1s
					5000, // 5s - reconnecting
				},
			},
			[]string{"target"},
		),
		deliveriesTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "photovault_bus_deliveries_total",
				Help: "Total number of handled deliveries by queue, status, and redelivery flag",
			},
			[]string{"queue", "status", "redelivered"},
		),
		handlingDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "photovault_bus_handling_duration_milliseconds",
				Help: "Message handler duration in milliseconds",
				Buckets: []float64{
					10,    // 10ms - metadata updates
					50,    // 50ms
					100,   // 100ms
					500,   // 500ms - small image decode
					1000,  // 1s
					5000,  // 5s - large image processing
					10000, // 10s
					60000, // 1m - worst-case HEIC decode
				},
			},
			[]string{"queue"},
		),
	}
}

func (m *busMetrics) ObservePublish(target string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.publishesTotal.WithLabelValues(target, status).Inc()
	m.publishDuration.WithLabelValues(target).Observe(duration.Seconds() * 1000)
}

func (m *busMetrics) ObserveDelivery(queue string, duration time.Duration, err error, redelivered bool) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	redeliveredLabel := "false"
	if redelivered {
		redeliveredLabel = "true"
	}

	m.deliveriesTotal.WithLabelValues(queue, status, redeliveredLabel).Inc()
	m.handlingDuration.WithLabelValues(queue).Observe(duration.Seconds() * 1000)
}
