package cacheinfra

import (
	"context"
	"time"
)

// Store is the byte store contract both adapters satisfy. It mirrors
// cache.Store so this package stays free of an import on its consumer.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	RemovePrefix(ctx context.Context, prefix string) (int, error)
	Close() error
}

var (
	_ Store = (*SturdycStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// NewStore builds the store selected by cfg.Driver.
func NewStore(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverRedis:
		return NewRedisStore(cfg.Redis), nil
	default:
		store, err := NewSturdycStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
