package idempotency

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreReserveOnce(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	ok, err := store.Reserve(ctx, "checkout:u1:k1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "checkout:u1:k1")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Reserve(ctx, "checkout:u2:k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreRelease(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	ok, _ := store.Reserve(ctx, "k")
	require.True(t, ok)
	require.NoError(t, store.Release(ctx, "k"))
	require.NoError(t, store.Release(ctx, "never-reserved"))

	ok, err := store.Reserve(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreKeysExpire(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _ := store.Reserve(ctx, "k")
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = store.Reserve(ctx, "k")
	assert.True(t, ok)
}

func TestMemoryStoreConcurrentReserve(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := store.Reserve(context.Background(), "same-key"); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins)
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStoreReserveOnce(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	store := NewRedisStoreFromClient(client, time.Minute)
	ctx := context.Background()
	key := "test-" + uuid.New().String()
	defer client.Del(ctx, keyPrefix+key)

	ok, err := store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	ttl, err := client.TTL(ctx, keyPrefix+key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Release(ctx, key))
	ok, err = store.Reserve(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}
