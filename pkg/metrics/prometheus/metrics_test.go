package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/photovault/pkg/metrics"
)

// One test function: the constructors register collectors on the shared
// registry, so each may run only once per process.
func TestPrometheusMetricsRecord(t *testing.T) {
	metrics.InitRegistry()

	osm := NewObjectStoreMetrics()
	if osm == nil {
		t.Fatal("expected object store metrics after InitRegistry")
	}
	osm.ObserveOperation("put", "thumbnails", 12*time.Millisecond, nil)
	osm.ObserveOperation("get", "thumbnails", 5*time.Millisecond, errors.New("boom"))
	osm.RecordBytes("put", "thumbnails", 1024)
	osm.RecordBytes("put", "thumbnails", -1) // ignored

	bm := NewBusMetrics()
	if bm == nil {
		t.Fatal("expected bus metrics after InitRegistry")
	}
	bm.ObservePublish("photovault.files", time.Millisecond, nil)
	bm.ObserveDelivery("metadata-extract", 40*time.Millisecond, errors.New("bad image"), true)

	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	want := map[string]bool{
		"photovault_objectstore_operations_total":        false,
		"photovault_objectstore_bytes_transferred_total": false,
		"photovault_bus_publishes_total":                 false,
		"photovault_bus_deliveries_total":                false,
		"photovault_bus_handling_duration_milliseconds":  false,
	}
	for _, fam := range families {
		if _, ok := want[fam.GetName()]; ok {
			want[fam.GetName()] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("metric family %s not gathered", name)
		}
	}
}
