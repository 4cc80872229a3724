package queue

import (
	"context"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// dequeuePriorityScript pops the lowest-scored member of a priority zset
// and records it in the processing hash in one round trip, fusing
// popMin(priority) + hset(processing, id, now) into a single atomic step.
var dequeuePriorityScript = redis.NewScript(`
local popped = redis.call('ZPOPMIN', KEYS[1], 1)
if #popped == 0 then
	return false
end
redis.call('HSET', KEYS[2], popped[1], ARGV[1])
return popped[1]
`)

// dequeuePendingScript is the pending-list equivalent: an atomic
// lpop(pending) + hset(processing, id, now).
var dequeuePendingScript = redis.NewScript(`
local id = redis.call('LPOP', KEYS[1])
if not id then
	return false
end
redis.call('HSET', KEYS[2], id, ARGV[1])
return id
`)

// RedisStore is the backing-store adapter. It wraps a redis.UniversalClient
// and exposes the narrow primitive surface of Store.
type RedisStore struct {
	Client redis.UniversalClient
}

// NewRedisStore constructs a RedisStore over an already-configured client.
// Connection pooling remains the client's concern.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{Client: client}
}

func (s *RedisStore) HSet(ctx context.Context, key, field string, value []byte) error {
	if err := s.Client.HSet(ctx, key, field, value).Err(); err != nil {
		return errStoreUnavailable("hset", err)
	}
	return nil
}

func (s *RedisStore) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	v, err := s.Client.HGet(ctx, key, field).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errStoreUnavailable("hget", err)
	}
	return v, true, nil
}

func (s *RedisStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	m, err := s.Client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, errStoreUnavailable("hgetall", err)
	}
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = []byte(v)
	}
	return out, nil
}

func (s *RedisStore) HDel(ctx context.Context, key, field string) error {
	if err := s.Client.HDel(ctx, key, field).Err(); err != nil {
		return errStoreUnavailable("hdel", err)
	}
	return nil
}

func (s *RedisStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	n, err := s.Client.HIncrBy(ctx, key, field, delta).Result()
	if err != nil {
		return 0, errStoreUnavailable("hincrby", err)
	}
	return n, nil
}

func (s *RedisStore) HLen(ctx context.Context, key string) (int64, error) {
	n, err := s.Client.HLen(ctx, key).Result()
	if err != nil {
		return 0, errStoreUnavailable("hlen", err)
	}
	return n, nil
}

func (s *RedisStore) RPush(ctx context.Context, key, value string) error {
	if err := s.Client.RPush(ctx, key, value).Err(); err != nil {
		return errStoreUnavailable("rpush", err)
	}
	return nil
}

func (s *RedisStore) LPop(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.LPop(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errStoreUnavailable("lpop", err)
	}
	return v, true, nil
}

func (s *RedisStore) LLen(ctx context.Context, key string) (int64, error) {
	n, err := s.Client.LLen(ctx, key).Result()
	if err != nil {
		return 0, errStoreUnavailable("llen", err)
	}
	return n, nil
}

func (s *RedisStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if err := s.Client.ZAdd(ctx, key, &redis.Z{Score: score, Member: member}).Err(); err != nil {
		return errStoreUnavailable("zadd", err)
	}
	return nil
}

func (s *RedisStore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	ids, err := s.Client.ZRangeByScore(ctx, key, &redis.ZRangeBy{
		Min: strconv.FormatFloat(min, 'f', -1, 64),
		Max: strconv.FormatFloat(max, 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, errStoreUnavailable("zrangebyscore", err)
	}
	return ids, nil
}

func (s *RedisStore) ZRem(ctx context.Context, key, member string) error {
	if err := s.Client.ZRem(ctx, key, member).Err(); err != nil {
		return errStoreUnavailable("zrem", err)
	}
	return nil
}

func (s *RedisStore) ZCard(ctx context.Context, key string) (int64, error) {
	n, err := s.Client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, errStoreUnavailable("zcard", err)
	}
	return n, nil
}

func (s *RedisStore) DequeuePriority(ctx context.Context, priorityKey, processingKey string, now int64) (string, bool, error) {
	res, err := dequeuePriorityScript.Run(ctx, s.Client, []string{priorityKey, processingKey}, now).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errStoreUnavailable("dequeuePriority", err)
	}
	id, ok := res.(string)
	if !ok {
		return "", false, nil
	}
	return id, true, nil
}

func (s *RedisStore) DequeuePending(ctx context.Context, pendingKey, processingKey string, now int64) (string, bool, error) {
	res, err := dequeuePendingScript.Run(ctx, s.Client, []string{pendingKey, processingKey}, now).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errStoreUnavailable("dequeuePending", err)
	}
	id, ok := res.(string)
	if !ok {
		return "", false, nil
	}
	return id, true, nil
}

var _ Store = (*RedisStore)(nil)
