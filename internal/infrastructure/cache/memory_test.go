package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servconnect/mlservices/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{name: "store and retrieve bytes", key: "k1", value: []byte("embedding"), ttl: time.Minute},
		{name: "store empty value", key: "k2", value: []byte{}, ttl: time.Minute},
		{name: "store with short TTL", key: "k3", value: []byte("expires-soon"), ttl: time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value, tt.ttl))

			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				assert.ErrorIs(t, err, domain.ErrCacheMiss)
				return
			}

			got, err := cache.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))
	value[0] = 'x'

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })

	_, err := cache.Get(context.Background(), "non-existent-key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "delete-test", []byte("v"), time.Minute))
	require.NoError(t, cache.Delete(ctx, "delete-test"))

	_, err := cache.Get(ctx, "delete-test")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "exists-test", []byte("v"), time.Minute))
	exists, err = cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Set(ctx, "short-ttl", []byte("v"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)
	exists, err = cache.Exists(ctx, "short-ttl")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "old", []byte("v"), time.Millisecond))
	require.NoError(t, cache.Set(ctx, "fresh", []byte("v"), time.Hour))
	assert.Equal(t, 2, cache.Size())

	cache.removeExpired(time.Now().Add(time.Second))
	assert.Equal(t, 1, cache.Size())
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, cache.Set(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}, time.Minute))
	}
	require.Equal(t, 5, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, err := cache.Get(ctx, "k0")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	t.Cleanup(func() { _ = cache.Close() })
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", id)
			assert.NoError(t, cache.Set(ctx, key, []byte{byte(id)}, time.Minute))
			_, err := cache.Get(ctx, key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
}
