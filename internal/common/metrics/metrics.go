// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	MockAPIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_api_requests_total",
			Help: "Requests served by the mock API",
		},
		[]string{"route", "status"},
	)
)

// JobTimer follows one job from activation to completion or failure.
type JobTimer struct {
	taskType string
	start    time.Time
	done     bool
}

// StartJob bumps the active gauge for taskType.
func StartJob(taskType string) *JobTimer {
	WorkerJobsActive.WithLabelValues(taskType).Inc()
	return &JobTimer{taskType: taskType, start: time.Now()}
}

func (t *JobTimer) Completed() {
	if t.finish() {
		WorkerJobsCompleted.WithLabelValues(t.taskType).Inc()
	}
}

func (t *JobTimer) Failed(errorCode string) {
	if t.finish() {
		WorkerJobsFailed.WithLabelValues(t.taskType, errorCode).Inc()
	}
}

func (t *JobTimer) finish() bool {
	if t.done {
		return false
	}
	t.done = true
	WorkerJobsActive.WithLabelValues(t.taskType).Dec()
	WorkerJobDuration.WithLabelValues(t.taskType).Observe(time.Since(t.start).Seconds())
	return true
}
