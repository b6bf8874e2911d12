package ports

import "time"

// JobMetrics records job outcomes. A nil JobMetrics is never passed to
// usecases; use NopJobMetrics instead.
type JobMetrics interface {
	ObserveJobRun(job string, status string, elapsed time.Duration)
	AddVehiclesParked(count int)
	ObserveNotification(kind string, delivered bool)
}

type NopJobMetrics struct{}

func (NopJobMetrics) ObserveJobRun(string, string, time.Duration) {}
func (NopJobMetrics) AddVehiclesParked(int)                       {}
func (NopJobMetrics) ObserveNotification(string, bool)            {}
