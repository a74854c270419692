// Package cache provides the read-through cache used by the product catalog.
//
// # Overview
//
// The package exports four building blocks:
//
//   - Store: the key/value contract (Get, Set with TTL, idempotent Remove) a
//     backing store must satisfy. PrefixRemover is an optional extension.
//   - KeyScheme: computes deterministic keys for every cacheable query.
//   - KeyIndex: remembers which keys were issued under each scope.
//   - ReadThrough and GetOrFetch: the single cached-query wrapper.
//
// # Basic Usage
//
//	cfg := cache.DefaultConfig()
//	store, err := cache.NewStore(cfg)
//	rt, err := cache.NewReadThroughFromConfig(cfg, store)
//	keys := cache.NewKeySchemeFromConfig(cfg)
//
//	page, err := cache.GetOrFetch(ctx, rt, keys.ProductPage(1, 10), func(ctx context.Context) (Page, error) {
//		return repo.GetPaged(ctx, 1, 10)
//	})
//
// # Key Layout
//
// Keys are colon separated and start with the namespace ("products" by
// default):
//
//	products:paged:<page>:<size>
//	products:category:<categoryID>
//	products:id:<productID>
//	products:search:<xxhash of the normalized term>
//	products:lowstock:<threshold>
//	products:dashboard
//	products:categories
//
// Every non-singleton scope shares the prefix returned by KeyScheme.Prefix,
// which lets stores with prefix removal purge a scope in one call.
//
// # Failure Handling
//
// Caching never decides correctness. GetOrFetch logs and absorbs store
// failures (ErrUnavailable) and payloads that no longer decode
// (ErrPayloadCorrupt), then serves the request from the fetch function.
// Errors returned by the fetch function propagate unchanged.
package cache
