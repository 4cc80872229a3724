package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPool_ProcessesAllJobsConcurrently(t *testing.T) {
	b := newTestBroker()
	ctx := context.Background()

	const n = 5
	for i := 0; i < n; i++ {
		_, err := b.AddJob(ctx, []byte("payload"), AddJobOptions{})
		assert.NoError(t, err)
	}

	var processed int64
	pool := NewPool(b, "pool-test", 3, func(ctx context.Context, data []byte) ([]byte, error) {
		atomic.AddInt64(&processed, 1)
		return data, nil
	})
	for _, w := range pool.workers {
		w.idle = 10 * time.Millisecond
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- pool.Run(runCtx) }()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt64(&processed) == n
	}, time.Second, 10*time.Millisecond)

	pool.Stop()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not stop")
	}
}
