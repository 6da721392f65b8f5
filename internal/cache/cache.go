package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin JSON read-cache over redis. A nil *Cache (no REDIS_ADDR
// configured) is valid and behaves as a permanent miss, so handlers never
// need to branch on whether caching is enabled.
type Cache struct {
	client *redis.Client
}

// Connect returns nil when addr is empty. A failed ping is logged and also
// returns nil; the application runs without the cache rather than failing.
func Connect(addr string) *Cache {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Println("[CACHE] [WARN] redis unavailable, continuing without cache:", err)
		return nil
	}

	log.Println("[CACHE] [INFO] redis connected:", addr)
	return &Cache{client: client}
}

// Get unmarshals the cached value into dest and reports whether it was found.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c == nil {
		return false
	}

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		log.Println("[CACHE] [WARN] get failed:", err)
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Println("[CACHE] [WARN] cached value corrupt, dropping key:", key)
		c.client.Del(ctx, key)
		return false
	}
	return true
}

// Set stores value as JSON with the given TTL. Failures are logged, never
// surfaced; the cache is best-effort.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Println("[CACHE] [WARN] marshal failed:", err)
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		log.Println("[CACHE] [WARN] set failed:", err)
	}
}

// Invalidate removes the given keys after a write to the backing collection.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Println("[CACHE] [WARN] invalidate failed:", err)
	}
}
