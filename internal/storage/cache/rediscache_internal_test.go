package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-push-service/pkg/dispatch"
)

func TestRedisReceiptCache_Keys(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	assert.Equal(t, "push:receipts:msg-1", newRedisReceiptCache(rdb, "").key("msg-1"))
	assert.Equal(t, "tenant-a:msg-1", newRedisReceiptCache(rdb, "tenant-a").key("msg-1"))
}

func TestTranslateRedisError(t *testing.T) {
	t.Run("Missing key is not found", func(t *testing.T) {
		err := translateRedisError("msg-1", redis.Nil)
		require.ErrorIs(t, err, dispatch.ErrReceiptNotFound)
	})

	t.Run("Other errors are wrapped", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := translateRedisError("msg-1", cause)
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, dispatch.ErrReceiptNotFound)
		assert.Contains(t, err.Error(), "msg-1")
	})
}

func TestRedisReceiptCache_PutRequiresID(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()

	err := newRedisReceiptCache(rdb, "").PutReceipt(context.Background(), dispatch.Receipt{}, 0)
	require.Error(t, err)
}
