package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Platform API metrics
	PlatformRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudio_platform_requests_total",
			Help: "Total number of platform API requests by operation and status",
		},
		[]string{"operation", "status"},
	)

	PlatformRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudio_platform_request_duration_seconds",
			Help:    "Platform API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Migration metrics
	MigrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudio_migrations_total",
			Help: "Total number of deploy invocations by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cloudio_stage_duration_seconds",
			Help:    "Time spent in each deploy stage in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"stage"},
	)

	PollEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cloudio_poll_evaluations_total",
			Help: "Total number of polling condition evaluations by poller",
		},
		[]string{"poller"},
	)
)

func init() {
	prometheus.MustRegister(PlatformRequestsTotal)
	prometheus.MustRegister(PlatformRequestDuration)
	prometheus.MustRegister(MigrationsTotal)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(PollEvaluations)
}

// Timer measures elapsed time for histogram observations
type Timer struct {
	start time.Time
}

// NewTimer starts a timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the time elapsed since the timer started
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time on h
func (t *Timer) ObserveDuration(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}

// ObserveDurationVec records the elapsed time on h with the given labels
func (t *Timer) ObserveDurationVec(h *prometheus.HistogramVec, labels ...string) {
	h.WithLabelValues(labels...).Observe(t.Duration().Seconds())
}

// WriteTextfile writes every registered metric to path in the text
// exposition format read by the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
