package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cookieflix/cookieflix-backend/internal/config"
)

type testStruct struct {
	Name string
	Age  int
}

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	expected := testStruct{Name: "Alice", Age: 30}
	err := cache.Set(ctx, "user:1", expected, time.Minute)
	require.NoError(t, err)

	var actual testStruct
	found, err := cache.Get(ctx, "user:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out testStruct
	found, err := cache.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user:1", testStruct{Name: "Alice"}, time.Minute))
	require.NoError(t, cache.Invalidate(ctx, "user:1"))

	var out testStruct
	found, err := cache.Get(ctx, "user:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCSRFTokenIsOneTime(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	token, err := cache.IssueCSRFToken(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	ok, err := cache.ConsumeCSRFToken(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.ConsumeCSRFToken(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "token must not be consumable twice")
}

func TestConsumeUnknownCSRFToken(t *testing.T) {
	cache := setupTestCache(t)

	ok, err := cache.ConsumeCSRFToken(context.Background(), "never-issued")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllowAttempt(t *testing.T) {
	cache := setupTestCache(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := cache.AllowAttempt(ctx, "login:user@example.com:127.0.0.1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
	}

	allowed, err := cache.AllowAttempt(ctx, "login:user@example.com:127.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed, "sixth attempt should be rejected")

	// другой ключ считается отдельно
	allowed, err = cache.AllowAttempt(ctx, "login:other@example.com:127.0.0.1", 5, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
