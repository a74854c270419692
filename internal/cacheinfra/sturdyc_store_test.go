package cacheinfra

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SturdycStore {
	t.Helper()

	store, err := NewSturdycStore(Config{
		Capacity:           100,
		NumShards:          2,
		MaxTTL:             10 * time.Minute,
		EvictionPercentage: 10,
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{
		Capacity:           1000,
		NumShards:          256,
		MaxTTL:             0,
		EvictionPercentage: 10,
	})

	if err == nil {
		t.Fatal("expected error but got none")
	}
	if err.Error() != "config error in field MaxTTL: must be greater than 0" {
		t.Errorf("unexpected error message %q", err.Error())
	}
	if store != nil {
		t.Error("expected store to be nil when error occurs")
	}
}

func TestSturdycStore_GetSet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("miss on absent key", func(t *testing.T) {
		payload, found, err := store.Get(ctx, "products:paged:1:10")
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		if found || payload != nil {
			t.Errorf("expected miss, got found=%v payload=%q", found, payload)
		}
	})

	t.Run("hit after set", func(t *testing.T) {
		if err := store.Set(ctx, "products:paged:1:10", []byte(`{"items":[]}`), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}

		payload, found, err := store.Get(ctx, "products:paged:1:10")
		if err != nil {
			t.Fatalf("expected no error but got: %v", err)
		}
		if !found {
			t.Fatal("expected hit after set")
		}
		if string(payload) != `{"items":[]}` {
			t.Errorf("unexpected payload %q", payload)
		}
	})

	t.Run("stored payload is not aliased", func(t *testing.T) {
		buf := []byte("abc")
		if err := store.Set(ctx, "alias", buf, time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
		buf[0] = 'z'

		payload, _, _ := store.Get(ctx, "alias")
		if string(payload) != "abc" {
			t.Errorf("expected stored copy to be unaffected, got %q", payload)
		}
	})
}

func TestSturdycStore_EntryTTL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	store.now = func() time.Time { return now }

	if err := store.Set(ctx, "short", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "capped", []byte("v"), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, found, _ := store.Get(ctx, "short"); found {
		t.Error("expected entry to expire after its own TTL")
	}
	if _, found, _ := store.Get(ctx, "capped"); !found {
		t.Error("expected capped entry to still be live")
	}

	now = now.Add(10 * time.Minute)
	if _, found, _ := store.Get(ctx, "capped"); found {
		t.Error("expected TTL above MaxTTL to be capped")
	}
}

func TestSturdycStore_Remove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "products:id:1", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := store.Remove(ctx, "products:id:1"); err != nil {
		t.Errorf("expected no error from Remove but got: %v", err)
	}
	if _, found, _ := store.Get(ctx, "products:id:1"); found {
		t.Error("expected key to be removed")
	}

	// Removing an absent key is idempotent.
	if err := store.Remove(ctx, "products:id:1"); err != nil {
		t.Errorf("expected no error removing absent key but got: %v", err)
	}
}

func TestSturdycStore_RemovePrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keys := []string{
		"products:paged:1:10",
		"products:paged:2:10",
		"products:pagedx",
		"products:category:c1",
	}
	for _, key := range keys {
		if err := store.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	removed, err := store.RemovePrefix(ctx, "products:paged:")
	if err != nil {
		t.Fatalf("expected no error from RemovePrefix but got: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed keys, got %d", removed)
	}

	expect := map[string]bool{
		"products:paged:1:10":  false,
		"products:paged:2:10":  false,
		"products:pagedx":      true,
		"products:category:c1": true,
	}
	for key, want := range expect {
		if _, found, _ := store.Get(ctx, key); found != want {
			t.Errorf("key %s: expected found=%v, got %v", key, want, found)
		}
	}

	removed, err = store.RemovePrefix(ctx, "nonexistent:")
	if err != nil || removed != 0 {
		t.Errorf("expected no-op for unmatched prefix, got removed=%d err=%v", removed, err)
	}
}

func TestSturdycStore_CanceledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Get(ctx, "k")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}

	var storeErr *StoreError
	if err := store.Set(ctx, "k", nil, time.Minute); !errors.As(err, &storeErr) || storeErr.Op != "set" {
		t.Errorf("expected set StoreError, got %v", err)
	}
}
