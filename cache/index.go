package cache

import (
	"slices"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// KeyIndex remembers which keys were issued under each scope and until when
// they can live. Invalidation consults it to remove exactly the keys that may
// exist instead of guessing the key space.
//
// Keys are recorded before their payload is written and are only dropped when
// their TTL has passed, so a read that races an invalidation leaves its key
// visible to the next sweep.
type KeyIndex struct {
	scopes *xsync.MapOf[Scope, *scopeKeys]
	now    func() time.Time
}

// scopeKeys holds the deadlines of one scope. Record sweeps expired entries
// at most once per TTL so the index stays bounded by what is actually live,
// whether or not invalidation ever reads it.
type scopeKeys struct {
	deadlines *xsync.MapOf[string, time.Time]
	nextSweep atomic.Int64
}

// NewKeyIndex returns an empty index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{
		scopes: xsync.NewMapOf[Scope, *scopeKeys](),
		now:    time.Now,
	}
}

// Record registers key as live for ttl from now. Recording the same key again
// extends its deadline.
func (i *KeyIndex) Record(key Key, ttl time.Duration) {
	sk, _ := i.scopes.LoadOrCompute(key.Scope, func() *scopeKeys {
		return &scopeKeys{deadlines: xsync.NewMapOf[string, time.Time]()}
	})

	now := i.now()
	expiresAt := now.Add(ttl)
	sk.deadlines.Compute(key.Name, func(old time.Time, loaded bool) (time.Time, bool) {
		if loaded && old.After(expiresAt) {
			return old, false
		}
		return expiresAt, false
	})

	next := sk.nextSweep.Load()
	if now.UnixNano() >= next && sk.nextSweep.CompareAndSwap(next, expiresAt.UnixNano()) {
		sk.prune(now)
	}
}

// Keys returns the live keys of scope in sorted order. Expired entries are
// pruned on the way.
func (i *KeyIndex) Keys(scope Scope) []string {
	sk, ok := i.scopes.Load(scope)
	if !ok {
		return nil
	}

	live := sk.prune(i.now())
	slices.Sort(live)
	return live
}

// Len returns the number of tracked keys in scope. Entries that expired since
// the last sweep are still counted.
func (i *KeyIndex) Len(scope Scope) int {
	sk, ok := i.scopes.Load(scope)
	if !ok {
		return 0
	}
	return sk.deadlines.Size()
}

// prune drops the entries that expired before now and returns the rest.
func (sk *scopeKeys) prune(now time.Time) []string {
	var live []string
	sk.deadlines.Range(func(name string, expiresAt time.Time) bool {
		if now.Before(expiresAt) {
			live = append(live, name)
			return true
		}
		// a concurrent Record may have extended the deadline since Range read it
		sk.deadlines.Compute(name, func(current time.Time, loaded bool) (time.Time, bool) {
			return current, !loaded || !now.Before(current)
		})
		return true
	})
	return live
}
