package cacheinfra

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 100

// RedisStore is a byte store backed by Redis. Keys are namespaced with the
// configured prefix so several deployments can share one database.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore connects a Redis client using cfg. The connection is lazy;
// call Ping to verify it.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.DialTimeout,
	})
	return NewRedisStoreWithClient(client, cfg.KeyPrefix)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storeErr("get", key, err)
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.fullKey(key), payload, ttl).Err(); err != nil {
		return storeErr("set", key, err)
	}
	return nil
}

// Remove deletes key. DEL on a missing key returns 0, not an error.
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.fullKey(key)).Err(); err != nil {
		return storeErr("remove", key, err)
	}
	return nil
}

// RemovePrefix walks the keyspace with SCAN and deletes matches in batches.
func (r *RedisStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	pattern := r.fullKey(prefix) + "*"
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()

	removed := 0
	keys := make([]string, 0, scanBatch)
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := r.client.Del(ctx, keys...).Result()
		if err != nil {
			return err
		}
		removed += int(n)
		keys = keys[:0]
		return nil
	}

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatch {
			if err := flush(); err != nil {
				return removed, storeErr("remove_prefix", prefix, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, storeErr("remove_prefix", prefix, err)
	}
	if err := flush(); err != nil {
		return removed, storeErr("remove_prefix", prefix, err)
	}
	return removed, nil
}

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return storeErr("ping", "", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) fullKey(key string) string {
	return r.prefix + key
}
