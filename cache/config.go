package cache

import (
	"time"

	"github.com/goliatone/go-inventory-cache/internal/cacheinfra"
)

// Invalidation strategies.
const (
	// StrategyAuto uses prefix removal when the store supports it and the
	// key index otherwise.
	StrategyAuto = "auto"
	// StrategyPrefix requires a store implementing PrefixRemover.
	StrategyPrefix = "prefix"
	// StrategyIndex removes the keys recorded in the KeyIndex.
	StrategyIndex = "index"
	// StrategyEnumerate removes the bounded paged key space from
	// AllPagedKeys. Keys outside the bounds survive until their TTL.
	StrategyEnumerate = "enumerate"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	TTL          time.Duration
	Codec        string
	Namespace    string
	Store        StoreConfig
	Invalidation InvalidationConfig
}

// StoreConfig selects and sizes the backing store.
type StoreConfig struct {
	Driver             string
	Capacity           int
	NumShards          int
	EvictionPercentage int
	EvictionInterval   time.Duration
	Redis              RedisConfig
}

// RedisConfig mirrors the Redis connection settings.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	KeyPrefix   string
	PoolSize    int
	DialTimeout time.Duration
}

// InvalidationConfig tunes how writes purge cached listings.
type InvalidationConfig struct {
	Strategy string
	// Concurrency bounds the number of removals in flight during a sweep.
	Concurrency  int
	MaxPages     int
	PageSizeStep int
	MaxPageSize  int
}

// Bounds returns the enumeration bounds used by StrategyEnumerate.
func (c InvalidationConfig) Bounds() PagedBounds {
	return PagedBounds{
		MaxPages:     c.MaxPages,
		PageSizeStep: c.PageSizeStep,
		MaxPageSize:  c.MaxPageSize,
	}
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	internal := cacheinfra.DefaultConfig()
	bounds := DefaultPagedBounds()

	return Config{
		TTL:       DefaultTTL,
		Codec:     CodecJSON,
		Namespace: DefaultNamespace,
		Store: StoreConfig{
			Driver:             internal.Driver,
			Capacity:           internal.Capacity,
			NumShards:          internal.NumShards,
			EvictionPercentage: internal.EvictionPercentage,
			EvictionInterval:   internal.EvictionInterval,
			Redis: RedisConfig{
				Addr:        internal.Redis.Addr,
				Password:    internal.Redis.Password,
				DB:          internal.Redis.DB,
				KeyPrefix:   internal.Redis.KeyPrefix,
				PoolSize:    internal.Redis.PoolSize,
				DialTimeout: internal.Redis.DialTimeout,
			},
		},
		Invalidation: InvalidationConfig{
			Strategy:     StrategyAuto,
			Concurrency:  16,
			MaxPages:     bounds.MaxPages,
			PageSizeStep: bounds.PageSizeStep,
			MaxPageSize:  bounds.MaxPageSize,
		},
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}
	if _, err := CodecByName(c.Codec); err != nil {
		return &ConfigError{Field: "Codec", Message: "must be one of json, msgpack"}
	}
	if normalizeName(c.Namespace) == "" {
		return &ConfigError{Field: "Namespace", Message: "must contain at least one letter or digit"}
	}

	switch c.Invalidation.Strategy {
	case StrategyAuto, StrategyPrefix, StrategyIndex, StrategyEnumerate:
	default:
		return &ConfigError{Field: "Invalidation.Strategy", Message: "must be one of auto, prefix, index, enumerate"}
	}
	if c.Invalidation.Concurrency < 1 {
		return &ConfigError{Field: "Invalidation.Concurrency", Message: "must be greater than 0"}
	}
	if c.Invalidation.Bounds().Len() == 0 {
		return &ConfigError{Field: "Invalidation.MaxPages", Message: "bounds must describe at least one page key"}
	}

	return c.toInternal().Validate()
}

// ConfigError represents a configuration validation error.
type ConfigError = cacheinfra.ConfigError

// NewStore constructs the store selected by cfg.Store.Driver. The returned
// value also implements PrefixRemover and io.Closer.
func NewStore(cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cacheinfra.NewStore(cfg.toInternal())
}

// NewReadThroughFromConfig builds a ReadThrough using the TTL and codec from cfg.
func NewReadThroughFromConfig(cfg Config, store Store, opts ...Option) (*ReadThrough, error) {
	codec, err := CodecByName(cfg.Codec)
	if err != nil {
		return nil, err
	}
	base := []Option{WithTTL(cfg.TTL), WithCodec(codec)}
	return NewReadThrough(store, append(base, opts...)...)
}

// NewKeySchemeFromConfig returns the key scheme for cfg.Namespace.
func NewKeySchemeFromConfig(cfg Config) *KeyScheme {
	return NewKeyScheme(cfg.Namespace)
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Driver:             c.Store.Driver,
		Capacity:           c.Store.Capacity,
		NumShards:          c.Store.NumShards,
		MaxTTL:             c.TTL,
		EvictionPercentage: c.Store.EvictionPercentage,
		EvictionInterval:   c.Store.EvictionInterval,
		Redis: cacheinfra.RedisConfig{
			Addr:        c.Store.Redis.Addr,
			Password:    c.Store.Redis.Password,
			DB:          c.Store.Redis.DB,
			KeyPrefix:   c.Store.Redis.KeyPrefix,
			PoolSize:    c.Store.Redis.PoolSize,
			DialTimeout: c.Store.Redis.DialTimeout,
		},
	}
}
