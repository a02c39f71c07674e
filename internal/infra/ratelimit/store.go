package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	memoryStorage "github.com/gofiber/storage/memory/v2"
	redisStorage "github.com/gofiber/storage/redis/v2"
	"github.com/redis/go-redis/v9"

	log "url2pdf/internal/infra/logging"
)

// RedisConfig locates the Redis database holding limiter counters.
type RedisConfig struct {
	Addr string
	DB   int
}

// NewStore returns Redis-backed limiter storage, or in-memory storage when no
// address is configured or Redis cannot be reached.
func NewStore(cfg RedisConfig) fiber.Storage {
	if cfg.Addr == "" {
		return memoryStorage.New()
	}
	store, err := newRedisStore(cfg)
	if err != nil {
		log.Error("Redis limiter store init failed, falling back to memory", "error", err)
		return memoryStorage.New()
	}
	log.Info("Using Redis for rate limiting", "addr", cfg.Addr, "db", cfg.DB)
	return store
}

// redisStorage.New panics when the initial ping fails.
func newRedisStore(cfg RedisConfig) (store fiber.Storage, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("redis storage: %v", r)
		}
	}()
	return redisStorage.New(redisStorage.Config{
		Addrs:    []string{cfg.Addr},
		Database: cfg.DB,
	}), nil
}

// NewClient returns a client for readiness checks, or nil when Redis is not configured.
func NewClient(cfg RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: cfg.Addr, DB: cfg.DB})
}

// Ready pings Redis with a short timeout. A nil client is always ready.
func Ready(ctx context.Context, rdb *redis.Client) bool {
	if rdb == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return rdb.Ping(ctx).Err() == nil
}
