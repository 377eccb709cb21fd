package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	liveAlertsKeyPrefix = "alerts:live"
	liveAlertsTTL        = 30 * time.Second
)

// RedisCache is a read-through cache for ListLive. It is invalidated
// synchronously on every insert and dismiss so a read immediately after
// a write never observes stale data — the TTL is only a backstop against
// a missed invalidation, not the primary expiry mechanism.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache connects to redisAddr. A connection failure is returned
// to the caller, who should treat the cache as absent (nil) rather than
// fail startup — Redis is an optional accelerator, never a hard
// dependency, for the alert store.
func NewRedisCache(redisAddr, password string, logger *zap.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     password,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client, logger: logger}, nil
}

func key(limit int) string {
	return fmt.Sprintf("%s:%d", liveAlertsKeyPrefix, limit)
}

func (c *RedisCache) Get(ctx context.Context, limit int) ([]Alert, bool) {
	raw, err := c.client.Get(ctx, key(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("alert cache read failed, falling back to database", zap.Error(err))
		}
		return nil, false
	}

	var cached []Alert
	if err := json.Unmarshal(raw, &cached); err != nil {
		c.logger.Warn("alert cache decode failed, falling back to database", zap.Error(err))
		return nil, false
	}
	return cached, true
}

func (c *RedisCache) Set(ctx context.Context, limit int, list []Alert) {
	raw, err := json.Marshal(list)
	if err != nil {
		c.logger.Warn("alert cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key(limit), raw, liveAlertsTTL).Err(); err != nil {
		c.logger.Warn("alert cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached limit variant. Called synchronously
// after any write so the read-after-write invariant holds regardless of
// which limit a subsequent read requests.
func (c *RedisCache) Invalidate(ctx context.Context) {
	keys, err := c.client.Keys(ctx, liveAlertsKeyPrefix+":*").Result()
	if err != nil {
		c.logger.Warn("alert cache invalidation scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("alert cache invalidation failed", zap.Error(err))
	}
}

func (c *RedisCache) Close() error { return c.client.Close() }
