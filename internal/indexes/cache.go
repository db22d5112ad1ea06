package indexes

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Cache stores serialized index series keyed by series/date-range so that
// repeated simulations do not refetch the external API.
type Cache interface {
	Get(key string) (string, bool)
	Set(key string, value string) error
}

// MemoryCache is a process-local Cache for single-instance deployments and
// tests.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string]string)}
}

func (m *MemoryCache) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

func (m *MemoryCache) Set(key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// RedisCache is a Cache backed by a Redis instance, for deployments where
// multiple service replicas share fetched series.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache connects to the given Redis address.
func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: rdb,
		ctx:    context.Background(),
	}
}

func (r *RedisCache) Get(key string) (string, bool) {
	val, err := r.client.Get(r.ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(key string, value string) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}
