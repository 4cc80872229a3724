package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListenerBuilder_OnlyWiredCallbacksFire(t *testing.T) {
	var retryFired bool
	l := NewListenerBuilder().
		OnJobRetry(func(ctx context.Context, job *Job, cause error, delay time.Duration) {
			retryFired = true
		}).
		Build()

	// Unwired callbacks must be safe no-ops.
	assert.NotPanics(t, func() {
		l.OnJobAdded(context.Background(), &Job{})
		l.OnJobStarted(context.Background(), &Job{})
		l.OnJobCompleted(context.Background(), &Job{})
		l.OnJobFailed(context.Background(), &Job{}, nil)
		l.OnJobsRecovered(context.Background(), 1)
		l.OnError(context.Background(), nil)
	})

	l.OnJobRetry(context.Background(), &Job{}, nil, time.Second)
	assert.True(t, retryFired)
}

func TestEmitter_JobsRecoveredSkipsZero(t *testing.T) {
	var e emitter
	var fired int
	e.Subscribe(NewListenerBuilder().
		OnJobsRecovered(func(ctx context.Context, count int) { fired++ }).
		Build())

	e.jobsRecovered(context.Background(), 0)
	assert.Equal(t, 0, fired)

	e.jobsRecovered(context.Background(), 3)
	assert.Equal(t, 1, fired)
}
