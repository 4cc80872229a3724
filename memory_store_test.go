package queue

import (
	"context"
	"sort"
	"strconv"
	"sync"
)

// memoryStore is a fake in-memory Store used by the non-Redis unit tests.
// It is not exported: production code always talks to RedisStore or a
// caller-supplied Store, never this type.
type memoryStore struct {
	mu     sync.Mutex
	hashes map[string]map[string][]byte
	lists  map[string][]string
	zsets  map[string]map[string]float64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		hashes: map[string]map[string][]byte{},
		lists:  map[string][]string{},
		zsets:  map[string]map[string]float64{},
	}
}

func (s *memoryStore) HSet(ctx context.Context, key, field string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = map[string][]byte{}
		s.hashes[key] = h
	}
	h[field] = value
	return nil
}

func (s *memoryStore) HGet(ctx context.Context, key, field string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		return nil, false, nil
	}
	v, ok := h[field]
	return v, ok, nil
}

func (s *memoryStore) HGetAll(ctx context.Context, key string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string][]byte{}
	for k, v := range s.hashes[key] {
		out[k] = v
	}
	return out, nil
}

func (s *memoryStore) HDel(ctx context.Context, key, field string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes[key], field)
	return nil
}

func (s *memoryStore) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.hashes[key]
	if !ok {
		h = map[string][]byte{}
		s.hashes[key] = h
	}
	cur, _ := strconv.ParseInt(string(h[field]), 10, 64)
	cur += delta
	h[field] = []byte(strconv.FormatInt(cur, 10))
	return cur, nil
}

func (s *memoryStore) HLen(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.hashes[key])), nil
}

func (s *memoryStore) RPush(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append(s.lists[key], value)
	return nil
}

func (s *memoryStore) LPop(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[key]
	if len(l) == 0 {
		return "", false, nil
	}
	v := l[0]
	s.lists[key] = l[1:]
	return v, true, nil
}

func (s *memoryStore) LLen(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.lists[key])), nil
}

func (s *memoryStore) ZAdd(ctx context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	z, ok := s.zsets[key]
	if !ok {
		z = map[string]float64{}
		s.zsets[key] = z
	}
	z[member] = score
	return nil
}

func (s *memoryStore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	type pair struct {
		member string
		score  float64
	}
	var pairs []pair
	for m, sc := range s.zsets[key] {
		if sc >= min && sc <= max {
			pairs = append(pairs, pair{m, sc})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.member
	}
	return out, nil
}

func (s *memoryStore) ZRem(ctx context.Context, key, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.zsets[key], member)
	return nil
}

func (s *memoryStore) ZCard(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.zsets[key])), nil
}

func (s *memoryStore) DequeuePriority(ctx context.Context, priorityKey, processingKey string, now int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	z := s.zsets[priorityKey]
	if len(z) == 0 {
		return "", false, nil
	}
	var best string
	var bestScore float64
	first := true
	for m, sc := range z {
		if first || sc < bestScore {
			best, bestScore, first = m, sc, false
		}
	}
	delete(z, best)
	h, ok := s.hashes[processingKey]
	if !ok {
		h = map[string][]byte{}
		s.hashes[processingKey] = h
	}
	h[best] = []byte(strconv.FormatInt(now, 10))
	return best, true, nil
}

func (s *memoryStore) DequeuePending(ctx context.Context, pendingKey, processingKey string, now int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.lists[pendingKey]
	if len(l) == 0 {
		return "", false, nil
	}
	id := l[0]
	s.lists[pendingKey] = l[1:]
	h, ok := s.hashes[processingKey]
	if !ok {
		h = map[string][]byte{}
		s.hashes[processingKey] = h
	}
	h[id] = []byte(strconv.FormatInt(now, 10))
	return id, true, nil
}

var _ Store = (*memoryStore)(nil)


