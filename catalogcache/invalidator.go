package catalogcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-inventory-cache/cache"
)

// derivedScopes are computed from catalog-wide state, so any product write
// can change them.
var derivedScopes = []cache.Scope{
	cache.ScopeDashboard,
	cache.ScopeLowStock,
	cache.ScopeSearch,
}

// InvalidationRequest describes what a product write changed.
type InvalidationRequest struct {
	// ProductID is the product whose direct lookup is stale. Nil means the
	// change is not tied to a known product, as on create.
	ProductID *uuid.UUID
	// CategoryID is the category whose listing is stale, if any.
	CategoryID *uuid.UUID
}

// ForProduct builds a request for a change to an existing product.
func ForProduct(productID, categoryID uuid.UUID) InvalidationRequest {
	return InvalidationRequest{ProductID: &productID, CategoryID: &categoryID}
}

// ForCategory builds a request for a change that only affects listings, such
// as a product created under categoryID.
func ForCategory(categoryID uuid.UUID) InvalidationRequest {
	return InvalidationRequest{CategoryID: &categoryID}
}

// Invalidator turns catalog writes into cache removals.
type Invalidator struct {
	store    cache.Store
	prefixer cache.PrefixRemover
	index    *cache.KeyIndex
	keys     *cache.KeyScheme
	cfg      cache.InvalidationConfig
	logger   *slog.Logger
}

// InvalidatorOption configures an Invalidator.
type InvalidatorOption func(*Invalidator)

// WithInvalidatorLogger sets the logger for failed removals and sweep summaries.
func WithInvalidatorLogger(logger *slog.Logger) InvalidatorOption {
	return func(inv *Invalidator) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// NewInvalidator builds an invalidator over the store and key index the
// read-through path writes to.
func NewInvalidator(rt *cache.ReadThrough, keys *cache.KeyScheme, cfg cache.InvalidationConfig, opts ...InvalidatorOption) (*Invalidator, error) {
	if rt == nil || keys == nil {
		return nil, fmt.Errorf("catalogcache: read-through and key scheme are required")
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	inv := &Invalidator{
		store:  rt.Store(),
		index:  rt.Index(),
		keys:   keys,
		cfg:    cfg,
		logger: slog.Default(),
	}
	inv.prefixer, _ = inv.store.(cache.PrefixRemover)

	switch cfg.Strategy {
	case cache.StrategyPrefix:
		if inv.prefixer == nil {
			return nil, &cache.ConfigError{Field: "Invalidation.Strategy", Message: fmt.Sprintf("store %T does not support prefix removal", inv.store)}
		}
	case cache.StrategyAuto:
		if inv.prefixer != nil {
			inv.cfg.Strategy = cache.StrategyPrefix
		} else {
			inv.cfg.Strategy = cache.StrategyIndex
		}
	case cache.StrategyIndex, cache.StrategyEnumerate:
	default:
		return nil, &cache.ConfigError{Field: "Invalidation.Strategy", Message: "must be one of auto, prefix, index, enumerate"}
	}

	for _, opt := range opts {
		opt(inv)
	}
	return inv, nil
}

// Strategy returns the resolved strategy; auto is never returned.
func (inv *Invalidator) Strategy() string {
	return inv.cfg.Strategy
}

// Invalidate removes every key a product write could have made stale: the
// product lookup when ProductID is set, the whole paged listing space, the
// category listing when CategoryID is set, and the derived scopes.
//
// All removals are attempted. Failures are logged and returned together;
// the write that triggered the call stands regardless.
func (inv *Invalidator) Invalidate(ctx context.Context, req InvalidationRequest) error {
	var ops []removal
	if req.ProductID != nil {
		ops = append(ops, inv.removeKey(inv.keys.ProductByID(*req.ProductID)))
	}
	if req.CategoryID != nil {
		ops = append(ops, inv.removeKey(inv.keys.CategoryListing(*req.CategoryID)))
	}
	ops = append(ops, inv.removeScope(cache.ScopePaged)...)
	for _, scope := range derivedScopes {
		ops = append(ops, inv.removeScope(scope)...)
	}

	return inv.run(ctx, "product", ops)
}

// InvalidateCategories removes the category list and the dashboard, whose
// chart lists every category.
func (inv *Invalidator) InvalidateCategories(ctx context.Context) error {
	ops := []removal{
		inv.removeKey(inv.keys.Categories()),
		inv.removeKey(inv.keys.Dashboard()),
	}
	return inv.run(ctx, "categories", ops)
}

type removal struct {
	target string
	do     func(ctx context.Context) error
}

func (inv *Invalidator) removeKey(key cache.Key) removal {
	return removal{
		target: key.Name,
		do: func(ctx context.Context) error {
			return inv.store.Remove(ctx, key.Name)
		},
	}
}

func (inv *Invalidator) removeScope(scope cache.Scope) []removal {
	if scope.Singleton() {
		switch scope {
		case cache.ScopeDashboard:
			return []removal{inv.removeKey(inv.keys.Dashboard())}
		case cache.ScopeCategories:
			return []removal{inv.removeKey(inv.keys.Categories())}
		}
	}

	switch inv.cfg.Strategy {
	case cache.StrategyPrefix:
		prefix := inv.keys.Prefix(scope)
		return []removal{{
			target: prefix + "*",
			do: func(ctx context.Context) error {
				_, err := inv.prefixer.RemovePrefix(ctx, prefix)
				return err
			},
		}}
	case cache.StrategyEnumerate:
		if scope == cache.ScopePaged {
			return inv.removeAll(inv.keys.AllPagedKeys(inv.cfg.Bounds()))
		}
	}

	names := inv.index.Keys(scope)
	ops := make([]removal, 0, len(names))
	for _, name := range names {
		ops = append(ops, inv.removeKey(cache.Key{Scope: scope, Name: name}))
	}
	return ops
}

func (inv *Invalidator) removeAll(keys []cache.Key) []removal {
	ops := make([]removal, len(keys))
	for i, key := range keys {
		ops[i] = inv.removeKey(key)
	}
	return ops
}

// run executes ops with bounded parallelism. No failure stops the sweep.
func (inv *Invalidator) run(ctx context.Context, reason string, ops []removal) error {
	var (
		mu   sync.Mutex
		errs error
	)

	var g errgroup.Group
	g.SetLimit(inv.cfg.Concurrency)
	for _, op := range ops {
		g.Go(func() error {
			if err := op.do(ctx); err != nil {
				inv.logger.Warn("cache invalidation failed",
					slog.String("target", op.target),
					slog.Any("error", err),
				)
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	inv.logger.Debug("cache invalidated",
		slog.String("reason", reason),
		slog.String("strategy", inv.cfg.Strategy),
		slog.Int("removals", len(ops)),
		slog.Int("failures", len(multierr.Errors(errs))),
	)
	return errs
}
