package domain

import (
	"context"
	"strconv"
)

// Ключи кеша — единое место, чтобы не расползались по коду.
const CacheKeyLatestGen = "media:latest:gen"

func CacheKeyLatest(gen int64) string { return "media:latest:" + strconv.FormatInt(gen, 10) }

// Простой k/v интерфейс. Реализация — Redis.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttlSeconds int) error
	Del(ctx context.Context, keys ...string) error
	// Поколение latest: увеличивается на каждую публикацию
	Incr(ctx context.Context, key string) (int64, error)
	Ping(context.Context) error
	Close()
}
