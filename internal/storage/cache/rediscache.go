package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

// DefaultKeyPrefix namespaces receipt entries in a shared Redis.
const DefaultKeyPrefix = "push:receipts"

// RedisReceiptCache stores receipts as JSON under "<prefix>:<requestID>".
type RedisReceiptCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisReceiptCache connects to Redis and pings it once.
// An empty prefix selects DefaultKeyPrefix.
func NewRedisReceiptCache(addr, password string, db int, prefix string) (*RedisReceiptCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed for %s: %w", addr, err)
	}

	return newRedisReceiptCache(rdb, prefix), nil
}

func newRedisReceiptCache(rdb *redis.Client, prefix string) *RedisReceiptCache {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisReceiptCache{rdb: rdb, prefix: prefix}
}

// GetReceipt returns dispatch.ErrReceiptNotFound when the key is absent or expired.
func (c *RedisReceiptCache) GetReceipt(ctx context.Context, requestID string) (*dispatch.Receipt, error) {
	raw, err := c.rdb.Get(ctx, c.key(requestID)).Bytes()
	if err != nil {
		return nil, translateRedisError(requestID, err)
	}

	var r dispatch.Receipt
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("corrupt cached receipt %s: %w", requestID, err)
	}
	return &r, nil
}

// PutReceipt caches r under its RequestID for ttl.
func (c *RedisReceiptCache) PutReceipt(ctx context.Context, r dispatch.Receipt, ttl time.Duration) error {
	if r.RequestID == "" {
		return errors.New("receipt has no request id")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(r.RequestID), b, ttl).Err()
}

func (c *RedisReceiptCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisReceiptCache) key(requestID string) string {
	return c.prefix + ":" + requestID
}

func translateRedisError(requestID string, err error) error {
	if errors.Is(err, redis.Nil) {
		return dispatch.ErrReceiptNotFound
	}
	return fmt.Errorf("redis get receipt %s: %w", requestID, err)
}
