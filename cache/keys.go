package cache

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultNamespace is the leading segment of every key.
const DefaultNamespace = "products"

// Scope names the family a key belongs to. Invalidation works per scope.
type Scope string

const (
	ScopePaged      Scope = "paged"
	ScopeCategory   Scope = "category"
	ScopeID         Scope = "id"
	ScopeSearch     Scope = "search"
	ScopeLowStock   Scope = "lowstock"
	ScopeDashboard  Scope = "dashboard"
	ScopeCategories Scope = "categories"
)

// Singleton reports whether the scope holds exactly one key.
func (s Scope) Singleton() bool {
	return s == ScopeDashboard || s == ScopeCategories
}

// Key is a cache key together with the scope it was issued under.
type Key struct {
	Scope Scope
	Name  string
}

func (k Key) String() string {
	return k.Name
}

// PagedBounds limits the paged key space that AllPagedKeys enumerates.
type PagedBounds struct {
	MaxPages     int
	PageSizeStep int
	MaxPageSize  int
}

// DefaultPagedBounds covers pages 1..100 with page sizes 5..100 in steps of 5.
func DefaultPagedBounds() PagedBounds {
	return PagedBounds{MaxPages: 100, PageSizeStep: 5, MaxPageSize: 100}
}

// Len returns the number of keys the bounds describe.
func (b PagedBounds) Len() int {
	if b.MaxPages < 1 || b.PageSizeStep < 1 || b.MaxPageSize < b.PageSizeStep {
		return 0
	}
	return b.MaxPages * (b.MaxPageSize / b.PageSizeStep)
}

// KeyScheme computes the canonical key for every cacheable catalog query.
// It holds no state beyond its namespace and is safe for concurrent use.
type KeyScheme struct {
	namespace  string
	serializer KeySerializer
}

// NewKeyScheme returns a scheme rooted at namespace. The namespace is
// normalized to snake_case; an empty value falls back to DefaultNamespace.
func NewKeyScheme(namespace string) *KeyScheme {
	ns := normalizeName(namespace)
	if ns == "" {
		ns = DefaultNamespace
	}
	return &KeyScheme{
		namespace:  ns,
		serializer: NewDefaultKeySerializer(),
	}
}

// Namespace returns the normalized namespace.
func (s *KeyScheme) Namespace() string {
	return s.namespace
}

// ProductPage keys one page of the full product listing. Callers normalize
// page >= 1 and size >= 1 before asking for a key.
func (s *KeyScheme) ProductPage(page, size int) Key {
	return s.key(ScopePaged, page, size)
}

// CategoryListing keys the product listing of one category.
func (s *KeyScheme) CategoryListing(categoryID uuid.UUID) Key {
	return s.key(ScopeCategory, categoryID)
}

// ProductByID keys a single product lookup.
func (s *KeyScheme) ProductByID(productID uuid.UUID) Key {
	return s.key(ScopeID, productID)
}

// Search keys a name search. The term is trimmed and lowercased, then hashed
// so arbitrary user input never leaks into the key.
func (s *KeyScheme) Search(term string) Key {
	normalized := strings.ToLower(strings.TrimSpace(term))
	return s.key(ScopeSearch, HashSegment([]byte(normalized)))
}

// LowStock keys the low-stock listing for a threshold.
func (s *KeyScheme) LowStock(threshold int) Key {
	return s.key(ScopeLowStock, threshold)
}

func (s *KeyScheme) Dashboard() Key {
	return s.key(ScopeDashboard)
}

func (s *KeyScheme) Categories() Key {
	return s.key(ScopeCategories)
}

// Prefix returns the string every key of scope starts with. For singleton
// scopes it is the key itself.
func (s *KeyScheme) Prefix(scope Scope) string {
	base := s.namespace + KeySeparator + string(scope)
	if scope.Singleton() {
		return base
	}
	return base + KeySeparator
}

// AllPagedKeys enumerates the paged key space inside bounds. This is an
// approximation: pages or sizes outside the bounds are not covered, so it is
// only used when the store offers no prefix removal and no key index exists.
func (s *KeyScheme) AllPagedKeys(bounds PagedBounds) []Key {
	keys := make([]Key, 0, bounds.Len())
	if bounds.Len() == 0 {
		return keys
	}
	for page := 1; page <= bounds.MaxPages; page++ {
		for size := bounds.PageSizeStep; size <= bounds.MaxPageSize; size += bounds.PageSizeStep {
			keys = append(keys, s.ProductPage(page, size))
		}
	}
	return keys
}

func (s *KeyScheme) key(scope Scope, args ...any) Key {
	return Key{
		Scope: scope,
		Name:  s.serializer.SerializeKey(s.namespace+KeySeparator+string(scope), args...),
	}
}
