package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string][]byte
	ttls    map[string]time.Duration
	gets    int
	failing bool
	// beforeSet runs outside the lock, standing in for network latency.
	beforeSet func(version uint64)
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failing {
		return nil, errors.New("connection refused")
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (f *fakeRedis) SetIfNewer(ctx context.Context, key string, value []byte, version uint64, ttl time.Duration) error {
	if f.beforeSet != nil {
		f.beforeSet(version)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	if cur, ok := f.data[key]; ok {
		var doc struct {
			Version uint64 `json:"version"`
		}
		if json.Unmarshal(cur, &doc) == nil && doc.Version > version {
			return nil
		}
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("connection refused")
	}
	delete(f.data, key)
	return nil
}

func TestCachedStoreBehavesLikeStore(t *testing.T) {
	exerciseStore(t, NewCachedStore(NewMemoryStore(), newFakeRedis(), "snapshot:", time.Minute, quietLogger()))
}

func TestCachedStoreServesFromCache(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	cache := newFakeRedis()
	store := NewCachedStore(backend, cache, "snapshot:", 15*time.Minute, quietLogger())

	if err := store.Save(ctx, "boss-1", sampleState(1)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := cache.data["snapshot:boss-1"]; !ok {
		t.Fatal("expected snapshot written through to cache")
	}
	if cache.ttls["snapshot:boss-1"] != 15*time.Minute {
		t.Fatalf("unexpected ttl %s", cache.ttls["snapshot:boss-1"])
	}

	// remove from the backend only; a cached read must still succeed
	if err := backend.Delete(ctx, "boss-1"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Load(ctx, "boss-1")
	if err != nil {
		t.Fatalf("expected cached load, got %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
}

func TestCachedStoreFillsOnMiss(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	cache := newFakeRedis()
	if err := backend.Save(ctx, "boss-1", sampleState(5)); err != nil {
		t.Fatal(err)
	}
	store := NewCachedStore(backend, cache, "snapshot:", time.Minute, quietLogger())
	if _, err := store.Load(ctx, "boss-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := cache.data["snapshot:boss-1"]; !ok {
		t.Fatal("expected cache filled after miss")
	}
}

func TestCachedStoreSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	cache := newFakeRedis()
	cache.failing = true
	store := NewCachedStore(NewMemoryStore(), cache, "snapshot:", time.Minute, quietLogger())

	if err := store.Save(ctx, "boss-1", sampleState(1)); err != nil {
		t.Fatalf("save should not fail when redis is down: %v", err)
	}
	got, err := store.Load(ctx, "boss-1")
	if err != nil {
		t.Fatalf("load should fall back to backend: %v", err)
	}
	if got.Version != 1 {
		t.Fatalf("expected version 1, got %d", got.Version)
	}
}

func TestCachedStoreDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	cache := newFakeRedis()
	if err := backend.Save(ctx, "boss-1", sampleState(2)); err != nil {
		t.Fatal(err)
	}
	cache.data["snapshot:boss-1"] = []byte("{not json")
	store := NewCachedStore(backend, cache, "snapshot:", time.Minute, quietLogger())

	got, err := store.Load(ctx, "boss-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 2 {
		t.Fatalf("expected backend version 2, got %d", got.Version)
	}
}

func TestCachedStoreKeepsNewestVersionUnderReorderedWrites(t *testing.T) {
	ctx := context.Background()
	cache := newFakeRedis()
	entered := make(chan struct{})
	release := make(chan struct{})
	cache.beforeSet = func(version uint64) {
		if version == 5 {
			close(entered)
			<-release
		}
	}
	store := NewCachedStore(NewMemoryStore(), cache, "snapshot:", time.Minute, quietLogger())

	done := make(chan error)
	go func() { done <- store.Save(ctx, "boss-1", sampleState(5)) }()
	<-entered

	// v6 lands in both the backend and the cache while v5's cache write is in flight
	if err := store.Save(ctx, "boss-1", sampleState(6)); err != nil {
		t.Fatalf("save v6: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("save v5: %v", err)
	}

	got, err := store.Load(ctx, "boss-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 6 {
		t.Fatalf("expected version 6 after reordered cache writes, got %d", got.Version)
	}
}

func TestCachedStoreRefillDoesNotDowngrade(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStore()
	cache := newFakeRedis()
	if err := backend.Save(ctx, "boss-1", sampleState(3)); err != nil {
		t.Fatal(err)
	}
	newer, err := encode(sampleState(4))
	if err != nil {
		t.Fatal(err)
	}
	store := NewCachedStore(backend, cache, "snapshot:", time.Minute, quietLogger())

	// a concurrent save caches v4 between this load's cache miss and its refill
	cache.beforeSet = func(version uint64) {
		if version == 3 {
			cache.mu.Lock()
			cache.data["snapshot:boss-1"] = newer
			cache.mu.Unlock()
		}
	}
	if _, err := store.Load(ctx, "boss-1"); err != nil {
		t.Fatalf("load: %v", err)
	}
	cache.beforeSet = nil

	got, err := store.Load(ctx, "boss-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Version != 4 {
		t.Fatalf("refill replaced cached version 4 with %d", got.Version)
	}
}
