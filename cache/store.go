package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-inventory-cache/internal/cacheinfra"
)

// Store is the key/value contract the read-through path depends on. It may be
// process local or distributed; implementations must be safe for concurrent
// use.
type Store interface {
	// Get returns the payload for key. A missing key is reported with
	// found == false and a nil error.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	// Set stores payload under key for ttl.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// PrefixRemover is implemented by stores that can delete every key sharing a
// prefix in one call.
type PrefixRemover interface {
	RemovePrefix(ctx context.Context, prefix string) (int, error)
}

var (
	// ErrUnavailable is matched by store failures. The read path absorbs it.
	ErrUnavailable = cacheinfra.ErrUnavailable
	// ErrPayloadCorrupt marks a cached payload that no longer decodes.
	ErrPayloadCorrupt = errors.New("cache payload corrupt")
)

// StoreError carries the failed store operation and key.
type StoreError = cacheinfra.StoreError
