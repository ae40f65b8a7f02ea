package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestHelper(t *testing.T) (*Helper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewHelper(client, "qb:", time.Minute), mr
}

func TestHelper_SetGet(t *testing.T) {
	h, mr := newTestHelper(t)
	ctx := context.Background()

	require.NoError(t, h.Set(ctx, "categories", []item{{1, "Mathematics"}}))
	assert.True(t, mr.Exists("qb:categories"))
	assert.Equal(t, time.Minute, mr.TTL("qb:categories"))

	var got []item
	require.NoError(t, h.Get(ctx, "categories", &got))
	assert.Equal(t, []item{{1, "Mathematics"}}, got)

	assert.ErrorIs(t, h.Get(ctx, "grades", &got), ErrCacheNotFound)
}

func TestGetOrLoad_LoadsOnceUntilExpiry(t *testing.T) {
	h, mr := newTestHelper(t)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) ([]item, error) {
		calls++
		return []item{{1, "Grade 1"}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := GetOrLoad(ctx, h, "grades", load)
		require.NoError(t, err)
		assert.Equal(t, "Grade 1", got[0].Name)
	}
	assert.Equal(t, 1, calls)

	mr.FastForward(2 * time.Minute)
	_, err := GetOrLoad(ctx, h, "grades", load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestGetOrLoad_WithoutClient(t *testing.T) {
	h := NewHelper(nil, "qb:", time.Minute)
	calls := 0
	got, err := GetOrLoad(context.Background(), h, "k", func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	_, _ = GetOrLoad(context.Background(), h, "k", func(context.Context) (int, error) {
		calls++
		return 42, nil
	})
	assert.Equal(t, 2, calls)
	assert.False(t, h.Enabled())
	assert.ErrorIs(t, h.HealthCheck(context.Background()), ErrCacheNotAvailable)
}

func TestGetOrLoad_LoadErrorNotCached(t *testing.T) {
	h, mr := newTestHelper(t)
	boom := errors.New("boom")
	_, err := GetOrLoad(context.Background(), h, "k", func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("qb:k"))
}

func TestGetOrLoad_ServerDownFallsBackToLoad(t *testing.T) {
	h, mr := newTestHelper(t)
	mr.Close()

	got, err := GetOrLoad(context.Background(), h, "k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client := NewRedisClient(context.Background(), Options{Addr: addr})
	require.NotNil(t, client)
	_ = client.Close()

	mr.Close()
	down := NewRedisClient(context.Background(), Options{Addr: addr})
	assert.Nil(t, down)

	// A helper over the missing client degrades to misses and reports unavailable.
	h := NewHelper(down, "test", time.Minute)
	assert.False(t, h.Enabled())
	assert.ErrorIs(t, h.HealthCheck(context.Background()), ErrCacheNotAvailable)
}
