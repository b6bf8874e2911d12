package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestJobMetricsCounters(t *testing.T) {
	m := NewJobMetrics()

	m.ObserveJobRun("expired_vehicles", "success", 120*time.Millisecond)
	m.ObserveJobRun("expired_vehicles", "error", time.Second)
	m.AddVehiclesParked(3)
	m.AddVehiclesParked(0)
	m.ObserveNotification("expiry_alert", true)
	m.ObserveNotification("expiry_alert", false)
	m.ObserveNotification("expiry_alert", false)

	if got := testutil.ToFloat64(m.jobRuns.WithLabelValues("expired_vehicles", "success")); got != 1 {
		t.Fatalf("job runs success = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.vehiclesParked); got != 3 {
		t.Fatalf("vehicles parked = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.notifications.WithLabelValues("expiry_alert", "failed")); got != 2 {
		t.Fatalf("failed notifications = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.lastJobSuccessSec.WithLabelValues("expired_vehicles")); got <= 0 {
		t.Fatalf("last success timestamp = %v, want > 0", got)
	}
}
