package cache

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.TTL != 10*time.Minute {
		t.Errorf("expected TTL 10m, got %v", cfg.TTL)
	}
	if cfg.Codec != CodecJSON {
		t.Errorf("expected json codec, got %q", cfg.Codec)
	}
	if cfg.Namespace != "products" {
		t.Errorf("expected products namespace, got %q", cfg.Namespace)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected memory driver, got %q", cfg.Store.Driver)
	}
	if cfg.Invalidation.Strategy != StrategyAuto {
		t.Errorf("expected auto strategy, got %q", cfg.Invalidation.Strategy)
	}
	if cfg.Invalidation.Bounds() != DefaultPagedBounds() {
		t.Errorf("expected default bounds, got %+v", cfg.Invalidation.Bounds())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"zero TTL", func(c *Config) { c.TTL = 0 }, "TTL"},
		{"unknown codec", func(c *Config) { c.Codec = "gob" }, "Codec"},
		{"punctuation namespace", func(c *Config) { c.Namespace = "::" }, "Namespace"},
		{"unknown strategy", func(c *Config) { c.Invalidation.Strategy = "all" }, "Invalidation.Strategy"},
		{"zero concurrency", func(c *Config) { c.Invalidation.Concurrency = 0 }, "Invalidation.Concurrency"},
		{"empty bounds", func(c *Config) { c.Invalidation.MaxPages = 0 }, "Invalidation.MaxPages"},
		{"store capacity", func(c *Config) { c.Store.Capacity = 0 }, "Capacity"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "memcached" }, "Driver"},
		{"redis without addr", func(c *Config) {
			c.Store.Driver = "redis"
			c.Store.Redis.Addr = ""
		}, "Redis.Addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestNewStore(t *testing.T) {
	cfg := DefaultConfig()

	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if _, ok := store.(PrefixRemover); !ok {
		t.Errorf("expected memory store to support prefix removal, got %T", store)
	}

	cfg.TTL = -time.Second
	if _, err := NewStore(cfg); err == nil {
		t.Error("expected invalid config to be rejected")
	}
}

func TestNewReadThroughFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 2 * time.Minute
	cfg.Codec = CodecMsgpack

	rt, err := NewReadThroughFromConfig(cfg, newMockStore())
	if err != nil {
		t.Fatalf("expected no error but got: %v", err)
	}
	if rt.TTL() != 2*time.Minute {
		t.Errorf("expected TTL from config, got %v", rt.TTL())
	}
	if rt.codec.Name() != CodecMsgpack {
		t.Errorf("expected msgpack codec, got %q", rt.codec.Name())
	}

	cfg.Codec = "xml"
	if _, err := NewReadThroughFromConfig(cfg, newMockStore()); err == nil {
		t.Error("expected unknown codec to be rejected")
	}
}
