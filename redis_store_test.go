package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

// redisAddrForTest returns the REDIS_ADDR env var, skipping the calling
// test when it is unset — these tests exercise the real Lua scripts
// against a live server and cannot run in CI without one.
func redisAddrForTest(t *testing.T) string {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run RedisStore tests")
	}
	return addr
}

func newTestRedisStore(t *testing.T) (*RedisStore, func()) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{redisAddrForTest(t)}})
	cleanup := func() {
		ctx := context.Background()
		var keys []string
		for _, pattern := range []string{"queue-test:" + t.Name() + "*", "queue:queue-test-" + t.Name() + ":*"} {
			found, _ := client.Keys(ctx, pattern).Result()
			keys = append(keys, found...)
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	}
	return NewRedisStore(client), cleanup
}

func TestRedisStore_DequeuePending(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	pendingKey := "queue-test:" + t.Name() + ":pending"
	processingKey := "queue-test:" + t.Name() + ":processing"

	assert.NoError(t, store.RPush(ctx, pendingKey, "job-1"))
	assert.NoError(t, store.RPush(ctx, pendingKey, "job-2"))

	now := time.Now().UnixMilli()
	id, ok, err := store.DequeuePending(ctx, pendingKey, processingKey, now)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "job-1", id)

	leased, ok, err := store.HGet(ctx, processingKey, "job-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, leased)

	llen, err := store.LLen(ctx, pendingKey)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), llen)
}

func TestRedisStore_DequeuePriority(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	priorityKey := "queue-test:" + t.Name() + ":priority"
	processingKey := "queue-test:" + t.Name() + ":processing"

	assert.NoError(t, store.ZAdd(ctx, priorityKey, -1, "low"))
	assert.NoError(t, store.ZAdd(ctx, priorityKey, -10, "high"))

	now := time.Now().UnixMilli()
	id, ok, err := store.DequeuePriority(ctx, priorityKey, processingKey, now)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "high", id)
}

func TestRedisStore_DequeueEmpty(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	_, ok, err := store.DequeuePending(ctx, "queue-test:"+t.Name()+":nope", "queue-test:"+t.Name()+":processing", time.Now().UnixMilli())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestBroker_AgainstRedisStore(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()

	b := NewBroker(store, BrokerConfig{Name: "queue-test-" + t.Name()})
	ctx := context.Background()

	id, err := b.AddJob(ctx, []byte("payload"), AddJobOptions{})
	assert.NoError(t, err)

	job, err := b.GetNextJob(ctx)
	assert.NoError(t, err)
	assert.Equal(t, id, job.ID)

	ok, err := b.CompleteJob(ctx, id, []byte("done"))
	assert.NoError(t, err)
	assert.True(t, ok)
}
