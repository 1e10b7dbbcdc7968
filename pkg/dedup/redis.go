package dedup

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces batch digests in a shared Redis instance.
const redisKeyPrefix = "gogetem:batch:"

// RedisStore persists batch payloads in Redis, keyed by content digest.
// It serves deployments where several hosts share one dedup index, so a
// batch fetched by one host is skipped by all others.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// redisKey builds the namespaced Redis key for a batch key.
func (s *RedisStore) redisKey(key string) string {
	return redisKeyPrefix + Digest(key)
}

// Has reports whether the key's payload is present in Redis.
func (s *RedisStore) Has(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.redisKey(key)).Result()
	if err != nil {
		DedupErrors.WithLabelValues("has").Inc()
		return false, fmt.Errorf("redis exists: %w", err)
	}

	if n == 0 {
		DedupMisses.WithLabelValues("redis").Inc()
		return false, nil
	}

	DedupHits.WithLabelValues("redis").Inc()
	return true, nil
}

// Put stores the payload without expiry. SetNX keeps the first write,
// matching the file store's write-once rule.
func (s *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	written, err := s.redis.SetNX(ctx, s.redisKey(key), data, 0).Result()
	if err != nil {
		DedupErrors.WithLabelValues("put").Inc()
		return fmt.Errorf("redis setnx: %w", err)
	}

	if written {
		DedupWrites.WithLabelValues("redis").Inc()
	}
	return nil
}
