// Package redisstore backs the repositories.Cache interface with Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aspataal/internal/config"
	"aspataal/internal/store/repositories"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Cache struct {
	rdb    *redis.Client
	prefix string
}

var _ repositories.Cache = (*Cache)(nil)

// Open creates the client and waits for a successful PING.
func Open(ctx context.Context, cfg config.RedisCfg) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 15 * time.Second
	ping := func() error { return rdb.Ping(ctx).Err() }
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("redis ping failed")
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Cache{rdb: rdb, prefix: cfg.Prefix}, nil
}

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, repositories.ErrCacheMiss
	}
	return b, err
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *Cache) Close() error { return c.rdb.Close() }
