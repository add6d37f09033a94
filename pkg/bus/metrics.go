package bus

import "time"

// Metrics records pipeline message outcomes.
//
// The interface lives here so the bus does not depend on a metrics backend;
// the Prometheus implementation lives in pkg/metrics/prometheus. A nil
// Metrics disables instrumentation entirely.
type Metrics interface {
	// ObservePublish records one publish with its confirm round-trip time.
	// Target is the exchange or queue the message went to.
	ObservePublish(target string, duration time.Duration, err error)

	// ObserveDelivery records one handled delivery and its outcome.
	ObserveDelivery(queue string, duration time.Duration, err error, redelivered bool)
}
