package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_AlwaysReturnsStorage(t *testing.T) {
	if s := NewStore(RedisConfig{}); s == nil {
		t.Fatalf("expected non-nil memory store when redis addr empty")
	}

	if s := NewStore(RedisConfig{Addr: "127.0.0.1:1", DB: 0}); s == nil {
		t.Fatalf("expected non-nil store even with unreachable redis")
	}
}

func TestNewStore_UsesRedisWhenReachable(t *testing.T) {
	mrs := miniredis.RunT(t)

	store := NewStore(RedisConfig{Addr: mrs.Addr()})
	require.NotNil(t, store)
	require.NoError(t, store.Set("k", []byte("v"), time.Minute))
	assert.True(t, mrs.Exists("k"), "value should be written to redis")
}

func TestReady(t *testing.T) {
	assert.True(t, Ready(context.Background(), nil))
	assert.Nil(t, NewClient(RedisConfig{}))

	mrs := miniredis.RunT(t)
	rdb := NewClient(RedisConfig{Addr: mrs.Addr()})
	defer rdb.Close()
	assert.True(t, Ready(context.Background(), rdb))

	mrs.Close()
	assert.False(t, Ready(context.Background(), rdb))
}
