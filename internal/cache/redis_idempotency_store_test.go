package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis testcontainer and returns its address.
func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	addr, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return addr
}

func TestRedisIdempotencyStore(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	rdb, err := NewClient(ctx, addr, "")
	require.NoError(t, err)
	defer rdb.Close()

	store := NewRedisIdempotencyStore(rdb, time.Minute, zerolog.Nop())

	t.Run("Recall before anything is remembered", func(t *testing.T) {
		val, ok, err := store.Recall(ctx, "user:1", "key-a")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, val)
	})

	t.Run("Lock is exclusive per scope and key", func(t *testing.T) {
		ok, err := store.TryLock(ctx, "user:1", "key-b")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.TryLock(ctx, "user:1", "key-b")
		require.NoError(t, err)
		assert.False(t, ok, "second lock on the same key should fail")

		ok, err = store.TryLock(ctx, "guest", "key-b")
		require.NoError(t, err)
		assert.True(t, ok, "a different scope is independent")
	})

	t.Run("Release allows retry", func(t *testing.T) {
		ok, err := store.TryLock(ctx, "user:2", "key-c")
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "user:2", "key-c"))

		ok, err = store.TryLock(ctx, "user:2", "key-c")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Remember then recall", func(t *testing.T) {
		require.NoError(t, store.Remember(ctx, "user:3", "key-d", "order-123"))

		val, ok, err := store.Recall(ctx, "user:3", "key-d")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "order-123", val)

		_, ok, err = store.Recall(ctx, "user:4", "key-d")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Keys expire", func(t *testing.T) {
		short := NewRedisIdempotencyStore(rdb, 200*time.Millisecond, zerolog.Nop())
		require.NoError(t, short.Remember(ctx, "user:5", "key-e", "order-9"))

		ttl, err := rdb.PTTL(ctx, mapKey("user:5", "key-e")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 200*time.Millisecond)
	})
}

func TestRedisIdempotencyStore_ClosedClient(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	rdb, err := NewClient(ctx, addr, "")
	require.NoError(t, err)
	store := NewRedisIdempotencyStore(rdb, time.Minute, zerolog.Nop())
	require.NoError(t, rdb.Close())

	_, err = store.TryLock(ctx, "user:1", "key")
	assert.Error(t, err)

	_, _, err = store.Recall(ctx, "user:1", "key")
	assert.Error(t, err)

	assert.Error(t, store.Remember(ctx, "user:1", "key", "v"))
}

func TestNewClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rdb, err := NewClient(ctx, "127.0.0.1:1", "")

	require.Error(t, err)
	assert.Nil(t, rdb)
	assert.Contains(t, err.Error(), "failed to ping redis")
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "idemp:user:7:abc", lockKey("user:7", "abc"))
	assert.Equal(t, "idemp:map:user:7:abc", mapKey("user:7", "abc"))
}
