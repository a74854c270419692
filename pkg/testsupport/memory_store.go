package testsupport

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-inventory-cache/cache"
)

// MemoryStore is a cache.Store for tests. It counts calls, can delay every
// operation and can fail operations on demand. TTLs are recorded but not
// enforced.
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	calls   map[string]int
	fail    map[string]error
	latency time.Duration
}

var (
	_ cache.Store         = (*MemoryStore)(nil)
	_ cache.PrefixRemover = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		ttls:  make(map[string]time.Duration),
		calls: make(map[string]int),
		fail:  make(map[string]error),
	}
}

// SetLatency delays every subsequent operation by d.
func (m *MemoryStore) SetLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency = d
}

// FailOn makes method ("Get", "Set", "Remove", "RemovePrefix") return err.
// A nil err clears the failure.
func (m *MemoryStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, method)
		return
	}
	m.fail[method] = err
}

// Calls returns how many times method was invoked.
func (m *MemoryStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// ResetCalls clears the call counters.
func (m *MemoryStore) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make(map[string]int)
}

// Has reports whether key is stored.
func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// TTL returns the ttl key was stored with.
func (m *MemoryStore) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Put stores a raw payload without counting a call.
func (m *MemoryStore) Put(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = payload
}

// Keys returns the stored keys in sorted order.
func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := m.enter(ctx, "Get", key); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payload, ok := m.data[key]
	return payload, ok, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := m.enter(ctx, "Set", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), payload...)
	m.ttls[key] = ttl
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	if err := m.enter(ctx, "Remove", key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	delete(m.ttls, key)
	return nil
}

func (m *MemoryStore) RemovePrefix(ctx context.Context, prefix string) (int, error) {
	if err := m.enter(ctx, "RemovePrefix", prefix); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key := range m.data {
		if strings.HasPrefix(key, prefix) {
			delete(m.data, key)
			delete(m.ttls, key)
			removed++
		}
	}
	return removed, nil
}

func (m *MemoryStore) enter(ctx context.Context, method, key string) error {
	m.mu.Lock()
	m.calls[method]++
	latency := m.latency
	failure := m.fail[method]
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return &cache.StoreError{Op: strings.ToLower(method), Key: key, Err: ctx.Err()}
		}
	}
	if failure != nil {
		return &cache.StoreError{Op: strings.ToLower(method), Key: key, Err: failure}
	}
	return nil
}

// BasicStore exposes only Get, Set and Remove of a MemoryStore, so
// invalidation has to fall back to the key index or enumeration.
type BasicStore struct {
	Mem *MemoryStore
}

var _ cache.Store = BasicStore{}

func (b BasicStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.Mem.Get(ctx, key)
}

func (b BasicStore) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return b.Mem.Set(ctx, key, payload, ttl)
}

func (b BasicStore) Remove(ctx context.Context, key string) error {
	return b.Mem.Remove(ctx, key)
}
