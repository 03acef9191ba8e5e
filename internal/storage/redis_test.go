package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *RedisKV {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisKVFromClient(client, "settings")
}

func TestRedisKV_SetGet(t *testing.T) {
	kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "selected_ai_model", "deepseek"))

	val, err := kv.Get(ctx, "selected_ai_model")
	require.NoError(t, err)
	assert.Equal(t, "deepseek", val)
}

func TestRedisKV_GetMissing(t *testing.T) {
	kv := setupTestRedis(t)

	_, err := kv.Get(context.Background(), "no_such_key")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRedisKV_Overwrite(t *testing.T) {
	kv := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "gemini_api_key", "first"))
	require.NoError(t, kv.Set(ctx, "gemini_api_key", "second"))

	val, err := kv.Get(ctx, "gemini_api_key")
	require.NoError(t, err)
	assert.Equal(t, "second", val)
}

func TestRedisKV_PrefixIsolation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	a := NewRedisKVFromClient(client, "tenant_a")
	b := NewRedisKVFromClient(client, "tenant_b")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "selected_ai_model", "openai"))

	_, err = b.Get(ctx, "selected_ai_model")
	assert.True(t, errors.Is(err, ErrNotFound))
}
