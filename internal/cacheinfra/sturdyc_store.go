package cacheinfra

import (
	"context"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

// entry is what the sturdyc client holds. sturdyc applies one TTL to the
// whole client, so the per-entry deadline requested by the caller travels
// with the payload and is checked on read.
type entry struct {
	payload   []byte
	expiresAt time.Time
}

// SturdycStore is an in-process byte store backed by a sturdyc client.
type SturdycStore struct {
	client *sturdyc.Client[entry]
	maxTTL time.Duration
	now    func() time.Time
}

// NewSturdycStore creates a new sturdyc store adapter.
// It validates the configuration and initializes a sturdyc client with the provided settings.
//
// Capacity, NumShards, MaxTTL and EvictionPercentage are passed to sturdyc.New();
// other options are applied via ToSturdycOptions().
func NewSturdycStore(cfg Config) (*SturdycStore, error) {
	cfg.Driver = DriverMemory
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := sturdyc.New[entry](
		cfg.Capacity,
		cfg.NumShards,
		cfg.MaxTTL,
		cfg.EvictionPercentage,
		cfg.ToSturdycOptions()...,
	)

	return &SturdycStore{
		client: client,
		maxTTL: cfg.MaxTTL,
		now:    time.Now,
	}, nil
}

// Get returns the payload stored under key. Expired entries are dropped and
// reported as absent.
func (s *SturdycStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, storeErr("get", key, err)
	}

	e, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}

	if !s.now().Before(e.expiresAt) {
		s.client.Delete(key)
		return nil, false, nil
	}

	return clone(e.payload), true, nil
}

// Set stores payload under key for ttl. A non-positive ttl, or one longer than
// the configured MaxTTL, is replaced by MaxTTL.
func (s *SturdycStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return storeErr("set", key, err)
	}

	if ttl <= 0 || ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	s.client.Set(key, entry{
		payload:   clone(payload),
		expiresAt: s.now().Add(ttl),
	})
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (s *SturdycStore) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return storeErr("remove", key, err)
	}
	s.client.Delete(key)
	return nil
}

// RemovePrefix removes all entries whose key starts with prefix and returns
// how many were removed.
func (s *SturdycStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, storeErr("remove_prefix", prefix, err)
	}

	removed := 0
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of entries currently held, expired ones included.
func (s *SturdycStore) Len() int {
	return s.client.Size()
}

// Close is a no-op; the sturdyc client has no resources to release.
func (s *SturdycStore) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
