package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"fleetcheck/internal/ports"
)

// JobMetrics exports job and notification counters on its own registry.
type JobMetrics struct {
	registry          *prometheus.Registry
	jobRuns           *prometheus.CounterVec
	jobDuration       *prometheus.HistogramVec
	vehiclesParked    prometheus.Counter
	notifications     *prometheus.CounterVec
	lastJobSuccessSec *prometheus.GaugeVec
}

var _ ports.JobMetrics = (*JobMetrics)(nil)

func NewJobMetrics() *JobMetrics {
	m := &JobMetrics{
		registry: prometheus.NewRegistry(),
		jobRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetcheck_job_runs_total",
				Help: "Total number of job runs by job and status.",
			},
			[]string{"job", "status"},
		),
		jobDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fleetcheck_job_duration_seconds",
				Help:    "Duration of job runs.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"job"},
		),
		vehiclesParked: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "fleetcheck_vehicles_parked_total",
				Help: "Total number of vehicles parked by the fleet sweep.",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleetcheck_notifications_total",
				Help: "Total number of notification attempts by kind and result.",
			},
			[]string{"kind", "result"},
		),
		lastJobSuccessSec: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fleetcheck_job_last_success_timestamp_seconds",
				Help: "Unix time of the last successful run per job.",
			},
			[]string{"job"},
		),
	}

	m.registry.MustRegister(
		m.jobRuns,
		m.jobDuration,
		m.vehiclesParked,
		m.notifications,
		m.lastJobSuccessSec,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *JobMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *JobMetrics) ObserveJobRun(job string, status string, elapsed time.Duration) {
	m.jobRuns.WithLabelValues(job, status).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	if status == "success" {
		m.lastJobSuccessSec.WithLabelValues(job).SetToCurrentTime()
	}
}

func (m *JobMetrics) AddVehiclesParked(count int) {
	if count > 0 {
		m.vehiclesParked.Add(float64(count))
	}
}

func (m *JobMetrics) ObserveNotification(kind string, delivered bool) {
	result := "failed"
	if delivered {
		result = "sent"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}
