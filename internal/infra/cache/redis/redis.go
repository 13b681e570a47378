package redisx

import (
	"context"
	"errors"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Cache struct {
	rdb    *redis.Client
	logger *zap.SugaredLogger
}

var _ domain.Cache = (*Cache)(nil)

type Config struct {
	Addr     string
	DB       int
	Password string
}

func New(cfg Config, logger *zap.SugaredLogger) *Cache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Cache{rdb: rdb, logger: logger}
}

func (c *Cache) Ping(ctx context.Context) error {
	err := c.rdb.Ping(ctx).Err()
	if err != nil {
		c.logger.Warnw("PING failed", "error", err)
	} else {
		c.logger.Debug("PING ok")
	}
	return err
}

func (c *Cache) Close() {
	if c.rdb == nil {
		c.logger.Info("nothing to close")
		return
	}
	if err := c.rdb.Close(); err != nil {
		c.logger.Warnw("error while closing", "error", err)
		return
	}
	c.logger.Info("closed")
}

// Get: промах — (nil, nil).
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debugw("GET miss", "key", key)
		return nil, nil
	}
	if err != nil {
		c.logger.Warnw("GET failed", "key", key, "error", err)
		return nil, err
	}
	c.logger.Debugw("GET hit", "key", key, "bytes", len(b))
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttlSeconds int) error {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	err := c.rdb.Set(ctx, key, val, ttl).Err()
	if err != nil {
		c.logger.Warnw("SET failed", "key", key, "error", err)
	} else {
		c.logger.Debugw("SET ok", "key", key, "ttl", ttl)
	}
	return err
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		c.logger.Warnw("DEL failed", "keys", keys, "error", err)
	} else {
		c.logger.Debugw("DEL ok", "keys", keys, "deleted", n)
	}
	return err
}

func (c *Cache) Incr(ctx context.Context, key string) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		c.logger.Warnw("INCR failed", "key", key, "error", err)
	} else {
		c.logger.Debugw("INCR ok", "key", key, "value", n)
	}
	return n, err
}
