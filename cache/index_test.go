package cache

import (
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestKeyIndex_RecordAndKeys(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	index.Record(keys.ProductPage(2, 10), time.Minute)
	index.Record(keys.ProductPage(1, 10), time.Minute)
	index.Record(keys.ProductPage(1, 10), time.Minute)
	index.Record(keys.Dashboard(), time.Minute)

	got := index.Keys(ScopePaged)
	want := []string{"products:paged:1:10", "products:paged:2:10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keys(paged) = %v, want %v", got, want)
	}

	if got := index.Keys(ScopeDashboard); len(got) != 1 {
		t.Errorf("expected a single dashboard key, got %v", got)
	}
	if got := index.Keys(ScopeSearch); got != nil {
		t.Errorf("expected no keys for an unused scope, got %v", got)
	}
}

func TestKeyIndex_Expiry(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	now := time.Now()
	index.now = func() time.Time { return now }

	index.Record(keys.ProductPage(1, 10), time.Minute)
	index.Record(keys.ProductPage(2, 10), 5*time.Minute)

	now = now.Add(2 * time.Minute)

	got := index.Keys(ScopePaged)
	if !reflect.DeepEqual(got, []string{"products:paged:2:10"}) {
		t.Errorf("expected only the live key, got %v", got)
	}
	if index.Len(ScopePaged) != 1 {
		t.Errorf("expected expired key to be pruned, Len = %d", index.Len(ScopePaged))
	}
}

func TestKeyIndex_RecordNeverShortensDeadline(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	now := time.Now()
	index.now = func() time.Time { return now }

	index.Record(keys.ProductPage(1, 10), 10*time.Minute)
	index.Record(keys.ProductPage(1, 10), time.Minute)

	now = now.Add(5 * time.Minute)
	if got := index.Keys(ScopePaged); len(got) != 1 {
		t.Errorf("expected key to stay live until the longest deadline, got %v", got)
	}
}

func TestKeyIndex_RecordSweepsExpiredKeys(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	now := time.Now()
	index.now = func() time.Time { return now }

	for i := 0; i < 5000; i++ {
		index.Record(keys.Search("term-"+strconv.Itoa(i)), time.Millisecond)
	}
	if n := index.Len(ScopeSearch); n != 5000 {
		t.Fatalf("expected 5000 live search keys, got %d", n)
	}

	now = now.Add(2 * time.Millisecond)
	index.Record(keys.Search("fresh"), time.Millisecond)

	if n := index.Len(ScopeSearch); n != 1 {
		t.Errorf("expected expired search keys to be swept on record, Len = %d", n)
	}
	if got := index.Keys(ScopeSearch); !reflect.DeepEqual(got, []string{keys.Search("fresh").Name}) {
		t.Errorf("expected only the fresh key, got %v", got)
	}
}

func TestKeyIndex_SweepLeavesOtherScopes(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	now := time.Now()
	index.now = func() time.Time { return now }

	index.Record(keys.ProductPage(1, 10), time.Millisecond)
	index.Record(keys.Search("old"), time.Millisecond)

	now = now.Add(time.Second)
	index.Record(keys.Search("new"), time.Minute)

	if n := index.Len(ScopeSearch); n != 1 {
		t.Errorf("expected search scope to be swept, Len = %d", n)
	}
	if n := index.Len(ScopePaged); n != 1 {
		t.Errorf("expected paged scope to wait for its own sweep, Len = %d", n)
	}
}

func TestKeyIndex_ConcurrentRecord(t *testing.T) {
	index := NewKeyIndex()
	keys := NewKeyScheme("products")

	var wg sync.WaitGroup
	for page := 1; page <= 50; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			index.Record(keys.ProductPage(page, 10), time.Minute)
			index.Keys(ScopePaged)
		}(page)
	}
	wg.Wait()

	if got := len(index.Keys(ScopePaged)); got != 50 {
		t.Errorf("expected 50 keys, got %d", got)
	}
}
