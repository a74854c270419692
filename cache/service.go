package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a query result stays cached.
const DefaultTTL = 10 * time.Minute

// FetchFn is the function signature GetOrFetch expects when fetching from the source of truth.
type FetchFn[T any] func(ctx context.Context) (T, error)

// ReadThrough holds the policy shared by every cached query: the store, the
// payload codec, the TTL and the key index. One instance is built at startup
// and handed to every query handler.
type ReadThrough struct {
	store  Store
	codec  Codec
	ttl    time.Duration
	index  *KeyIndex
	logger *slog.Logger
	group  singleflight.Group
}

// Option configures a ReadThrough.
type Option func(*ReadThrough)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(rt *ReadThrough) {
		if ttl > 0 {
			rt.ttl = ttl
		}
	}
}

// WithCodec sets the payload codec. JSONCodec is used by default.
func WithCodec(codec Codec) Option {
	return func(rt *ReadThrough) {
		if codec != nil {
			rt.codec = codec
		}
	}
}

// WithIndex shares an existing key index, typically with the invalidator.
func WithIndex(index *KeyIndex) Option {
	return func(rt *ReadThrough) {
		if index != nil {
			rt.index = index
		}
	}
}

// WithLogger sets the logger used for absorbed cache failures.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *ReadThrough) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// NewReadThrough builds the read-through policy on top of store.
func NewReadThrough(store Store, opts ...Option) (*ReadThrough, error) {
	if store == nil {
		return nil, errors.New("cache: store is required")
	}

	rt := &ReadThrough{
		store:  store,
		codec:  JSONCodec{},
		ttl:    DefaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.index == nil {
		rt.index = NewKeyIndex()
	}
	return rt, nil
}

// Store returns the underlying store.
func (rt *ReadThrough) Store() Store { return rt.store }

// Index returns the key index fed by every cache write.
func (rt *ReadThrough) Index() *KeyIndex { return rt.index }

// TTL returns the lifetime applied to cached results.
func (rt *ReadThrough) TTL() time.Duration { return rt.ttl }

// GetOrFetch returns the cached result for key or, on a miss, calls fetch and
// caches what it returns. Empty results are cached like any other.
//
// Cache failures never reach the caller: an unavailable store or a payload
// that no longer decodes is logged and treated as a miss. Errors from fetch
// are returned unchanged and nothing is cached. Concurrent misses on the same
// key share one fetch.
//
// The shared fetch is detached from the cancellation of whichever caller
// started it. A caller whose context ends stops waiting and gets ctx.Err();
// the others still receive the result.
func GetOrFetch[T any](ctx context.Context, rt *ReadThrough, key Key, fetch FetchFn[T]) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	if value, ok := decodeCached[T](ctx, rt, key); ok {
		return value, nil
	}

	ch := rt.group.DoChan(key.Name, func() (any, error) {
		fetchCtx := context.WithoutCancel(ctx)
		value, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		rt.write(fetchCtx, key, value)
		return value, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return zero, res.Err
	}

	shared := res.Val
	value, ok := shared.(T)
	if !ok {
		// nil interface results or a key shared by two result types
		if shared != nil {
			rt.logger.Warn("cache key shared across result types",
				slog.String("key", key.Name),
			)
			return fetch(ctx)
		}
		return zero, nil
	}
	return value, nil
}

func decodeCached[T any](ctx context.Context, rt *ReadThrough, key Key) (T, bool) {
	var value T

	payload, found, err := rt.store.Get(ctx, key.Name)
	if err != nil {
		rt.logger.Warn("cache read failed, falling back to source",
			slog.String("key", key.Name),
			slog.String("scope", string(key.Scope)),
			slog.Any("error", err),
		)
		return value, false
	}
	if !found {
		return value, false
	}

	if err := rt.codec.Unmarshal(payload, &value); err != nil {
		rt.logger.Warn("cache payload corrupt, refetching",
			slog.String("key", key.Name),
			slog.String("scope", string(key.Scope)),
			slog.Any("error", errors.Join(ErrPayloadCorrupt, err)),
		)
		var zero T
		return zero, false
	}
	return value, true
}

func (rt *ReadThrough) write(ctx context.Context, key Key, value any) {
	payload, err := rt.codec.Marshal(value)
	if err != nil {
		rt.logger.Warn("cache encode failed",
			slog.String("key", key.Name),
			slog.Any("error", err),
		)
		return
	}

	rt.index.Record(key, rt.ttl)
	if err := rt.store.Set(ctx, key.Name, payload, rt.ttl); err != nil {
		rt.logger.Warn("cache write failed",
			slog.String("key", key.Name),
			slog.String("scope", string(key.Scope)),
			slog.Any("error", err),
		)
	}
}
