package kvcache

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgredis "github.com/trendora/trendora-backend/pkg/redis"
)

type memStore struct {
	values map[string]string
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (m *memStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	default:
		return errors.New("unexpected value type")
	}
	return nil
}

func (m *memStore) Get(ctx context.Context, key string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return "", pkgredis.ErrNotFound
	}
	return value, nil
}

func (m *memStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

func (m *memStore) CacheKey(name string) string {
	return "trendora:cache:" + name
}

type cartFlags struct {
	IsCartOpen bool     `json:"isCartOpen"`
	Recent     []string `json:"recent"`
}

func TestCacheRoundTrip(t *testing.T) {
	store := newMemStore()
	cache := newWithStore(store, nil, Options{})

	want := cartFlags{IsCartOpen: true, Recent: []string{"a", "b"}}
	cache.Write(context.Background(), "flags", want)

	var got cartFlags
	found := cache.Read(context.Background(), "flags", &got, cartFlags{})
	if !found {
		t.Fatal("expected cache hit")
	}
	if got.IsCartOpen != want.IsCartOpen || len(got.Recent) != 2 || got.Recent[1] != "b" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestCacheReadMissingUsesFallback(t *testing.T) {
	cache := newWithStore(newMemStore(), nil, Options{})

	got := cartFlags{IsCartOpen: true}
	found := cache.Read(context.Background(), "absent", &got, cartFlags{IsCartOpen: false, Recent: []string{"x"}})
	if found {
		t.Fatal("expected miss")
	}
	if got.IsCartOpen || len(got.Recent) != 1 {
		t.Fatalf("fallback not applied: %+v", got)
	}
}

func TestCacheReadMalformedUsesFallback(t *testing.T) {
	store := newMemStore()
	store.values[store.CacheKey("broken")] = "{not json"
	cache := newWithStore(store, nil, Options{})

	var got cartFlags
	found := cache.Read(context.Background(), "broken", &got, cartFlags{Recent: []string{"default"}})
	if found {
		t.Fatal("malformed payload must report a miss")
	}
	if len(got.Recent) != 1 || got.Recent[0] != "default" {
		t.Fatalf("fallback not applied: %+v", got)
	}
}

func TestCacheWriteErrorIsSwallowed(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("quota exceeded")
	cache := newWithStore(store, nil, Options{})

	// must not panic or propagate
	cache.Write(context.Background(), "flags", cartFlags{IsCartOpen: true})

	var got cartFlags
	if found := cache.Read(context.Background(), "flags", &got, cartFlags{}); found {
		t.Fatal("failed write should leave no value behind")
	}
}

func TestCacheInvalidate(t *testing.T) {
	store := newMemStore()
	cache := newWithStore(store, nil, Options{})

	cache.Write(context.Background(), "flags", cartFlags{IsCartOpen: true})
	cache.Invalidate(context.Background(), "flags")

	var got cartFlags
	if found := cache.Read(context.Background(), "flags", &got, cartFlags{}); found {
		t.Fatal("expected miss after invalidate")
	}
}
