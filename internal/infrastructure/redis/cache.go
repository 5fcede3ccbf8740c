package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache implements ports.Cache using a Redis client.
type Cache struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewCache creates a new Redis-backed cache.
func NewCache(r redis.Cmdable, prefix string) *Cache {
	return &Cache{r: r, prefix: prefix}
}

func (c *Cache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Get implements Cache.Get.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.Set.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.r.Set(ctx, c.namespaced(key), value, ttl).Err()
}

// Delete implements Cache.Delete.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.r.Del(ctx, c.namespaced(key)).Err()
}
