package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/recipelens/backend/internal/domain"
)

// RedisCache implements domain.CacheRepository on a Redis server
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache parses a redis:// URL and returns a cache bound to it.
// The connection is not checked here; call Ping for that.
func NewRedisCache(url string, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = time.Second
	opts.WriteTimeout = time.Second
	opts.MaxRetries = 1

	if logger == nil {
		logger = zap.NewNop()
	}

	return &RedisCache{
		client: redis.NewClient(opts),
		logger: logger,
	}, nil
}

// Ping checks that the server is reachable
func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Get retrieves a value from Redis
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, c.unavailable("get", key, err)
	}
	return data, nil
}

// Set stores a value in Redis with the given TTL
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return c.unavailable("set", key, err)
	}
	return nil
}

// Delete removes a key from Redis
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return c.unavailable("delete", key, err)
	}
	return nil
}

// Exists reports whether a key is present
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, c.unavailable("exists", key, err)
	}
	return n > 0, nil
}

// Close releases the connection pool
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) unavailable(op, key string, err error) error {
	c.logger.Debug("redis operation failed",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
}
