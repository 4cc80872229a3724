package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetricsRecorder_Accumulates(t *testing.T) {
	r := NewPrometheusMetricsRecorder("corebroker", "test")

	r.RecordJobCompleted(100 * time.Millisecond)
	r.RecordJobCompleted(200 * time.Millisecond)
	r.RecordJobFailed()

	snap := r.GetMetrics()
	assert.Equal(t, int64(2), snap.Completed)
	assert.Equal(t, int64(1), snap.Failed)
	assert.Equal(t, 300*time.Millisecond, snap.TotalDuration)
}
