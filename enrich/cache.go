/*
cache.go - Cache abstraction for lender rule lookups

PURPOSE:
  A minimal string cache behind an interface, so the rule provider works
  against Redis in deployment and an in-process map in tests and in
  single-node setups without Redis. Misses are not errors.
*/
package enrich

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cache is a string key-value store. Get reports a miss with false.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// =============================================================================
// REDIS CACHE
// =============================================================================

// RedisCache backs the Cache interface with a Redis instance.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Close releases the underlying Redis connection pool.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// =============================================================================
// MEMORY CACHE
// =============================================================================

// MemoryCache is a process-local Cache, safe for concurrent use.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *MemoryCache) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
