// Package config loads the service configuration from defaults, an optional
// file and INVENTORY_* environment variables.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/goliatone/go-inventory-cache/pkg/di"
)

// EnvPrefix prefixes every environment override, e.g.
// INVENTORY_CACHE_STORE_DRIVER=redis.
const EnvPrefix = "INVENTORY"

type fileConfig struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	Database struct {
		Driver      string `mapstructure:"driver"`
		DSN         string `mapstructure:"dsn"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	Cache struct {
		TTL       time.Duration `mapstructure:"ttl"`
		Codec     string        `mapstructure:"codec"`
		Namespace string        `mapstructure:"namespace"`

		Store struct {
			Driver             string        `mapstructure:"driver"`
			Capacity           int           `mapstructure:"capacity"`
			NumShards          int           `mapstructure:"num_shards"`
			EvictionPercentage int           `mapstructure:"eviction_percentage"`
			EvictionInterval   time.Duration `mapstructure:"eviction_interval"`

			Redis struct {
				Addr        string        `mapstructure:"addr"`
				Password    string        `mapstructure:"password"`
				DB          int           `mapstructure:"db"`
				KeyPrefix   string        `mapstructure:"key_prefix"`
				PoolSize    int           `mapstructure:"pool_size"`
				DialTimeout time.Duration `mapstructure:"dial_timeout"`
			} `mapstructure:"redis"`
		} `mapstructure:"store"`

		Invalidation struct {
			Strategy     string `mapstructure:"strategy"`
			Concurrency  int    `mapstructure:"concurrency"`
			MaxPages     int    `mapstructure:"max_pages"`
			PageSizeStep int    `mapstructure:"page_size_step"`
			MaxPageSize  int    `mapstructure:"max_page_size"`
		} `mapstructure:"invalidation"`
	} `mapstructure:"cache"`

	Catalog struct {
		LowStockThreshold int `mapstructure:"low_stock_threshold"`
		DefaultPageSize   int `mapstructure:"default_page_size"`
		MaxPageSize       int `mapstructure:"max_page_size"`
	} `mapstructure:"catalog"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment apply. A .env file in the working directory
// is loaded first when present; variables already set win over it.
func Load(path string) (di.Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return di.Config{}, errors.Wrap(err, "failed to load .env")
		}
	}

	v := viper.New()
	setDefaults(v, di.DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return di.Config{}, errors.Wrapf(err, "failed to read config file %s", path)
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return di.Config{}, errors.Wrap(err, "unable to decode config")
	}

	cfg := fc.toDI()
	if err := cfg.Validate(); err != nil {
		return di.Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during
// Unmarshal.
func setDefaults(v *viper.Viper, d di.Config) {
	v.SetDefault("http.addr", d.HTTP.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.auto_migrate", d.Database.AutoMigrate)

	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.codec", d.Cache.Codec)
	v.SetDefault("cache.namespace", d.Cache.Namespace)

	v.SetDefault("cache.store.driver", d.Cache.Store.Driver)
	v.SetDefault("cache.store.capacity", d.Cache.Store.Capacity)
	v.SetDefault("cache.store.num_shards", d.Cache.Store.NumShards)
	v.SetDefault("cache.store.eviction_percentage", d.Cache.Store.EvictionPercentage)
	v.SetDefault("cache.store.eviction_interval", d.Cache.Store.EvictionInterval)
	v.SetDefault("cache.store.redis.addr", d.Cache.Store.Redis.Addr)
	v.SetDefault("cache.store.redis.password", d.Cache.Store.Redis.Password)
	v.SetDefault("cache.store.redis.db", d.Cache.Store.Redis.DB)
	v.SetDefault("cache.store.redis.key_prefix", d.Cache.Store.Redis.KeyPrefix)
	v.SetDefault("cache.store.redis.pool_size", d.Cache.Store.Redis.PoolSize)
	v.SetDefault("cache.store.redis.dial_timeout", d.Cache.Store.Redis.DialTimeout)

	v.SetDefault("cache.invalidation.strategy", d.Cache.Invalidation.Strategy)
	v.SetDefault("cache.invalidation.concurrency", d.Cache.Invalidation.Concurrency)
	v.SetDefault("cache.invalidation.max_pages", d.Cache.Invalidation.MaxPages)
	v.SetDefault("cache.invalidation.page_size_step", d.Cache.Invalidation.PageSizeStep)
	v.SetDefault("cache.invalidation.max_page_size", d.Cache.Invalidation.MaxPageSize)

	v.SetDefault("catalog.low_stock_threshold", d.Catalog.LowStockThreshold)
	v.SetDefault("catalog.default_page_size", d.Catalog.DefaultPageSize)
	v.SetDefault("catalog.max_page_size", d.Catalog.MaxPageSize)
}

func (fc fileConfig) toDI() di.Config {
	cfg := di.DefaultConfig()

	cfg.HTTP.Addr = fc.HTTP.Addr
	cfg.Log.Level = fc.Log.Level
	cfg.Log.Format = fc.Log.Format

	cfg.Database.Driver = fc.Database.Driver
	cfg.Database.DSN = fc.Database.DSN
	cfg.Database.AutoMigrate = fc.Database.AutoMigrate

	cfg.Cache.TTL = fc.Cache.TTL
	cfg.Cache.Codec = fc.Cache.Codec
	cfg.Cache.Namespace = fc.Cache.Namespace

	s := fc.Cache.Store
	cfg.Cache.Store.Driver = s.Driver
	cfg.Cache.Store.Capacity = s.Capacity
	cfg.Cache.Store.NumShards = s.NumShards
	cfg.Cache.Store.EvictionPercentage = s.EvictionPercentage
	cfg.Cache.Store.EvictionInterval = s.EvictionInterval
	cfg.Cache.Store.Redis.Addr = s.Redis.Addr
	cfg.Cache.Store.Redis.Password = s.Redis.Password
	cfg.Cache.Store.Redis.DB = s.Redis.DB
	cfg.Cache.Store.Redis.KeyPrefix = s.Redis.KeyPrefix
	cfg.Cache.Store.Redis.PoolSize = s.Redis.PoolSize
	cfg.Cache.Store.Redis.DialTimeout = s.Redis.DialTimeout

	inv := fc.Cache.Invalidation
	cfg.Cache.Invalidation.Strategy = inv.Strategy
	cfg.Cache.Invalidation.Concurrency = inv.Concurrency
	cfg.Cache.Invalidation.MaxPages = inv.MaxPages
	cfg.Cache.Invalidation.PageSizeStep = inv.PageSizeStep
	cfg.Cache.Invalidation.MaxPageSize = inv.MaxPageSize

	cfg.Catalog.LowStockThreshold = fc.Catalog.LowStockThreshold
	cfg.Catalog.DefaultPageSize = fc.Catalog.DefaultPageSize
	cfg.Catalog.MaxPageSize = fc.Catalog.MaxPageSize

	return cfg
}
