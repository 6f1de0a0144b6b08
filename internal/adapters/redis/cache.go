package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"immodash/internal/adapters/observability"
)

// Cache is a JSON value cache. A zero TTL keeps the entry forever.
type Cache struct {
	c    *redis.Client
	name string
}

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}), name: "redis"}
}

// Named returns a cache sharing the connection whose metrics are labelled name.
func (r *Cache) Named(name string) *Cache {
	return &Cache{c: r.c, name: name}
}

func (r *Cache) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *Cache) Close() error { return r.c.Close() }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache(r.name, "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveCache(r.name, "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	observability.ObserveCache(r.name, "set")
	return r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache(r.name, "del")
	return r.c.Del(ctx, key).Err()
}
