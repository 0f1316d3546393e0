package cache_test

import (
	"testing"
	"time"

	"tareas-api/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewRedisCacheWithClient(client), mr
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := setupRedisCache(t)

	require.NoError(t, c.Set("greeting", "hola", time.Minute))

	var got string
	require.NoError(t, c.Get("greeting", &got))
	assert.Equal(t, "hola", got)
}

func TestRedisCache_MissReturnsSentinel(t *testing.T) {
	c, _ := setupRedisCache(t)

	var got string
	err := c.Get("nope", &got)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisCache_DownReturnsSentinel(t *testing.T) {
	c, mr := setupRedisCache(t)
	mr.Close()

	assert.ErrorIs(t, c.Set("k", "v", time.Minute), cache.ErrCacheDown)

	var got string
	assert.ErrorIs(t, c.Get("k", &got), cache.ErrCacheDown)
	assert.ErrorIs(t, c.Delete("k"), cache.ErrCacheDown)
	assert.ErrorIs(t, c.Health(), cache.ErrCacheDown)
}

func TestNewRedisCache_NilConfigUsesDefaults(t *testing.T) {
	cfg := cache.DefaultCacheConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)

	c := cache.NewRedisCache(nil)
	require.NoError(t, c.Close())
}

func TestRedisCache_HealthAndClose(t *testing.T) {
	c, _ := setupRedisCache(t)

	require.NoError(t, c.Health())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Health(), cache.ErrCacheDown)
}
