package queue

import (
	"sync/atomic"
	"time"

	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder is the bundled non-nop MetricsRecorder (attach
// it with UseMetricsRecorder; a Broker otherwise records nothing),
// wiring github.com/prometheus/client_golang through the go-kit metrics
// facade: stdprometheus.*Opts passed to a go-kit/kit/metrics/prometheus
// constructor.
type PrometheusMetricsRecorder struct {
	completedTotal metricsCounter
	failedTotal    metricsCounter
	durationMillis metricsHistogram

	completedCount int64
	failedCount    int64
	durationSum    int64
}

type metricsCounter interface {
	Add(delta float64)
}

type metricsHistogram interface {
	Observe(value float64)
}

// NewPrometheusMetricsRecorder registers counters and a histogram under
// namespace/subsystem, mirroring the Namespace/Subsystem wiring in
// example_metrics_test.go's bootstrapMetrics.
func NewPrometheusMetricsRecorder(namespace, subsystem string) *PrometheusMetricsRecorder {
	return &PrometheusMetricsRecorder{
		completedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_completed_total",
			Help:      "Total number of jobs completed successfully.",
		}, []string{}),
		failedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed_total",
			Help:      "Total number of failed job attempts, including ones that are retried.",
		}, []string{}),
		durationMillis: prometheus.NewHistogramFrom(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration_milliseconds",
			Help:      "Processor execution time for completed jobs.",
		}, []string{}),
	}
}

func (m *PrometheusMetricsRecorder) RecordJobCompleted(duration time.Duration) {
	m.completedTotal.Add(1)
	m.durationMillis.Observe(float64(duration.Milliseconds()))
	atomic.AddInt64(&m.completedCount, 1)
	atomic.AddInt64(&m.durationSum, duration.Milliseconds())
}

func (m *PrometheusMetricsRecorder) RecordJobFailed() {
	m.failedTotal.Add(1)
	atomic.AddInt64(&m.failedCount, 1)
}

func (m *PrometheusMetricsRecorder) GetMetrics() Metrics {
	return Metrics{
		Completed:     atomic.LoadInt64(&m.completedCount),
		Failed:        atomic.LoadInt64(&m.failedCount),
		TotalDuration: time.Duration(atomic.LoadInt64(&m.durationSum)) * time.Millisecond,
	}
}

var _ MetricsRecorder = (*PrometheusMetricsRecorder)(nil)
