// Package catalogcache puts the product catalog behind the read-through cache
// and keeps the cache consistent with catalog writes.
//
// # Overview
//
// Queries serves every list-shaped read (paged listing, category listing,
// search, low stock, categories, product lookup, dashboard) through
// cache.GetOrFetch with the same TTL and codec. Commands performs writes
// against the repositories and, once a write has committed, hands an
// InvalidationRequest to the Invalidator before returning.
//
//	rt, _ := cache.NewReadThroughFromConfig(cfg.Cache, store)
//	keys := cache.NewKeySchemeFromConfig(cfg.Cache)
//	inv, _ := catalogcache.NewInvalidator(rt, keys, cfg.Cache.Invalidation)
//
//	queries := catalogcache.NewQueries(products, categories, rt, keys, cfg.Catalog)
//	commands := catalogcache.NewCommands(products, categories, inv, cfg.Catalog)
//
// # Invalidation
//
// Product writes remove the product lookup (update, stock change, delete),
// the listing of the product category, every paged listing key and the
// dashboard, low stock and search scopes. Creating a category removes the
// category list and the dashboard. A write whose target does not exist
// reports false and removes nothing.
//
// Scopes are purged according to the configured strategy:
//
//   - prefix: one RemovePrefix call per scope; needs a cache.PrefixRemover.
//   - index: removes the keys the cache.KeyIndex recorded for the scope.
//   - enumerate: removes cache.KeyScheme.AllPagedKeys for the paged scope.
//     Page numbers or sizes outside the bounds are missed and expire by TTL.
//   - auto: prefix when the store supports it, index otherwise.
//
// Removals run in parallel up to the configured concurrency. A failed removal
// is logged and the remaining ones still run; the write is never rolled back,
// so a failed purge leaves stale entries until their TTL.
//
// # Races
//
// A read that misses between a write's commit and its invalidation can cache
// pre-write data that the sweep then removes, or, if it lands after the
// sweep, data that lives until its TTL. The design accepts that window.
package catalogcache
