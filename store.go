package queue

import "context"

// Store is the narrow set of atomic backing-store primitives the broker
// needs. All broker code talks only to this interface; the concrete Redis
// implementation lives in redis_store.go. A fake in-memory Store is used by
// the non-Redis unit tests in broker_test.go.
type Store interface {
	HSet(ctx context.Context, key, field string, value []byte) error
	HGet(ctx context.Context, key, field string) ([]byte, bool, error)
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)
	HDel(ctx context.Context, key, field string) error
	HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error)
	HLen(ctx context.Context, key string) (int64, error)

	RPush(ctx context.Context, key, value string) error
	LPop(ctx context.Context, key string) (string, bool, error)
	LLen(ctx context.Context, key string) (int64, error)

	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	ZRem(ctx context.Context, key, member string) error
	ZCard(ctx context.Context, key string) (int64, error)

	// DequeuePriority pops the lowest-scored member of the priority zset
	// and, as one indivisible step, records it in the processing hash
	// with value now. ok is false when the zset is empty.
	DequeuePriority(ctx context.Context, priorityKey, processingKey string, now int64) (id string, ok bool, err error)
	// DequeuePending is the pending-list equivalent of DequeuePriority:
	// an atomic lpop(pending) + hset(processing, id, now).
	DequeuePending(ctx context.Context, pendingKey, processingKey string, now int64) (id string, ok bool, err error)
}
