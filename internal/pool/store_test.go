package pool

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test connection
	err := client.Ping(ctx).Err()
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	// Clear test DB
	err = client.FlushDB(ctx).Err()
	require.NoError(t, err)

	return client
}

func cleanupTestRedis(client *redis.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_ = client.FlushDB(ctx).Err()
	_ = client.Close()
}

func TestRedisStore_PutGet(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewRedisStore(client)
	require.NoError(t, err)

	ctx := context.Background()
	p := newTestPool(t, 1_000_000, 2_000_000, 30)

	require.NoError(t, store.Put(ctx, p))

	got, err := store.Get(ctx, p.Address)
	require.NoError(t, err)
	assert.Equal(t, p.Address, got.Address)
	assert.Equal(t, p.TokenAMint, got.TokenAMint)
	assert.Equal(t, p.TokenBMint, got.TokenBMint)
	assert.Equal(t, p.ReserveA, got.ReserveA)
	assert.Equal(t, p.ReserveB, got.ReserveB)
	assert.Equal(t, p.SwapFeeBasisPoints, got.SwapFeeBasisPoints)
	assert.True(t, got.IsActive)
}

func TestRedisStore_GetMissing(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewRedisStore(client)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

func TestRedisStore_List(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewRedisStore(client)
	require.NoError(t, err)

	ctx := context.Background()

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	p := newTestPool(t, 1_000_000, 2_000_000, 30)
	require.NoError(t, store.Put(ctx, p))

	// Put is idempotent for the index
	p.ReserveA = 1_500_000
	require.NoError(t, store.Put(ctx, p))

	items, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint64(1_500_000), items[0].ReserveA)
}

func TestRedisStore_RejectsTamperedAddress(t *testing.T) {
	client := setupTestRedis(t)
	defer cleanupTestRedis(client)

	store, err := NewRedisStore(client)
	require.NoError(t, err)

	p := newTestPool(t, 1_000_000, 2_000_000, 30)
	p.Address = "tampered"

	err = store.Put(context.Background(), p)
	assert.ErrorIs(t, err, ErrInvalidTokenMint)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrPoolNotFound)

	p := newTestPool(t, 1_000_000, 2_000_000, 30)
	require.NoError(t, store.Put(ctx, p))

	got, err := store.Get(ctx, p.Address)
	require.NoError(t, err)
	assert.Equal(t, p.ReserveA, got.ReserveA)

	// The store hands out copies, not aliases
	got.ReserveA = 42
	again, err := store.Get(ctx, p.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), again.ReserveA)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
