package apicache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/pebblebot/pebble/internal/config"
	"github.com/pebblebot/pebble/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

// Cache shields the ancillary API services (weather, news, GitHub) from
// repeated identical upstream calls. Backed by redis; falls back to an
// in-process map with the same TTL semantics when redis is offline at
// startup.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger_i.Logger

	mu   sync.RWMutex
	mem  map[string]memEntry
	now  func() time.Time
}

type memEntry struct {
	value   string
	expires time.Time
}

func New(ctx context.Context) *Cache {
	logger := logger_i.NewLogger("APICache")
	c := &Cache{
		ttl:    config.APICacheTTL,
		logger: logger,
		mem:    make(map[string]memEntry),
		now:    time.Now,
	}

	client := redis.NewClient(&redis.Options{
		Addr:                  config.GetEnv("REDIS_ADDR", config.RedisAddr),
		DB:                    config.APICacheDB,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if !config.FallbackToMemory {
			logger.Error("Redis is offline and fallback disabled", "error", err)
			return nil
		}
		logger.Warn("Redis is offline, using in-memory cache", "error", err)
		go c.closeOnDone(ctx, nil)
		return c
	}

	c.client = client
	logger.Info("Redis API cache ready")
	go c.closeOnDone(ctx, client)
	return c
}

// NewTestCache injects a redis client directly (miniredis in tests).
func NewTestCache(client *redis.Client) *Cache {
	return &Cache{
		client: client,
		ttl:    config.APICacheTTL,
		logger: logger_i.NewLogger("APICache test"),
		mem:    make(map[string]memEntry),
		now:    time.Now,
	}
}

func (c *Cache) closeOnDone(ctx context.Context, client *redis.Client) {
	<-ctx.Done()
	if client != nil {
		if err := client.Close(); err != nil {
			c.logger.Error("Error closing redis client", "error", err)
		}
	}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil {
		return "", false
	}
	if c.client != nil {
		val, err := c.client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return "", false
		}
		if err != nil {
			c.logger.Warn("cache read failed", "key", key, "error", err)
			return "", false
		}
		return val, true
	}

	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return "", false
	}
	return entry.value, true
}

func (c *Cache) Set(ctx context.Context, key string, value string) {
	if c == nil {
		return
	}
	if c.client != nil {
		if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return
	}

	c.mu.Lock()
	c.mem[key] = memEntry{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}
