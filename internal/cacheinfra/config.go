package cacheinfra

import (
	"time"

	"github.com/viccon/sturdyc"
)

const (
	// DriverMemory selects the in-process sturdyc store.
	DriverMemory = "memory"
	// DriverRedis selects the Redis store.
	DriverRedis = "redis"
)

// Config holds the configuration for the cache store adapters.
type Config struct {
	// Driver selects the backing store: "memory" or "redis".
	Driver string

	// Capacity defines the maximum number of entries that the memory store can hold.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Higher values improve concurrency but increase memory overhead.
	// Must be greater than 0. Default: 256
	NumShards int

	// MaxTTL is the longest lifetime any entry may have in the memory store.
	// Per-entry TTLs passed to Set are capped to this value.
	MaxTTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the memory store reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often sturdyc checks for expired entries.
	// Zero value uses the default interval.
	EvictionInterval time.Duration

	Redis RedisConfig
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	PoolSize  int
	// DialTimeout bounds connection setup; reads and writes use the same value.
	DialTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for a single process.
func DefaultConfig() Config {
	return Config{
		Driver:             DriverMemory,
		Capacity:           10000,
		NumShards:          256,
		MaxTTL:             30 * time.Minute,
		EvictionPercentage: 10,
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			KeyPrefix:   "inventory:",
			PoolSize:    10,
			DialTimeout: 3 * time.Second,
		},
	}
}

// ToSturdycOptions converts the Config to sturdyc.Option slice.
// Capacity, NumShards, MaxTTL, and EvictionPercentage are passed directly
// to sturdyc.New() and are not included in the options.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	var options []sturdyc.Option

	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}

	return options
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverMemory:
		if c.Capacity <= 0 {
			return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
		}
		if c.NumShards <= 0 {
			return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
		}
		if c.MaxTTL <= 0 {
			return &ConfigError{Field: "MaxTTL", Message: "must be greater than 0"}
		}
		if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
			return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
		}
		if c.EvictionInterval < 0 {
			return &ConfigError{Field: "EvictionInterval", Message: "must be non-negative"}
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return &ConfigError{Field: "Redis.Addr", Message: "must not be empty"}
		}
		if c.Redis.DB < 0 {
			return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
		}
		if c.Redis.DialTimeout < 0 {
			return &ConfigError{Field: "Redis.DialTimeout", Message: "must be non-negative"}
		}
	default:
		return &ConfigError{Field: "Driver", Message: "must be one of memory, redis"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
