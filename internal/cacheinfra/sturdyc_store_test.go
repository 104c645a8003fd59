package cacheinfra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-typed-content/cache"
)

type fakeClock struct {
	now atomic.Int64
}

func newFakeClock() *fakeClock {
	c := &fakeClock{}
	c.now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	return c
}

func (c *fakeClock) Now() time.Time          { return time.Unix(0, c.now.Load()) }
func (c *fakeClock) Advance(d time.Duration) { c.now.Add(int64(d)) }

func newTestStore(t *testing.T, clock *fakeClock) *SturdycStore {
	t.Helper()
	cfg := cache.DefaultConfig()
	cfg.Capacity = 1000
	cfg.NumShards = 4

	store, err := NewSturdycStore(cfg, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}
	return store
}

func mustInsert(t *testing.T, s *SturdycStore, key string, value any, deps cache.Dependencies, exp cache.Expiration) {
	t.Helper()
	if err := s.Insert(context.Background(), key, value, deps, exp); err != nil {
		t.Fatalf("Insert(%s) failed: %v", key, err)
	}
}

func mustHave(t *testing.T, s *SturdycStore, key string, want bool) {
	t.Helper()
	_, ok, err := s.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("Get(%s) failed: %v", key, err)
	}
	if ok != want {
		t.Errorf("Get(%s) present=%v, want %v", key, ok, want)
	}
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Capacity = 0

	if _, err := NewSturdycStore(cfg); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestSturdycStore_GetInsert(t *testing.T) {
	store := newTestStore(t, newFakeClock())

	mustHave(t, store, "a", false)
	mustInsert(t, store, "a", "value", cache.Dependencies{}, cache.NoExpiration())

	v, ok, err := store.Get(context.Background(), "a")
	if err != nil || !ok || v != "value" {
		t.Fatalf("Get(a) = %v, %v, %v", v, ok, err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
}

func TestSturdycStore_CascadingRemoval(t *testing.T) {
	store := newTestStore(t, newFakeClock())
	ctx := context.Background()

	mustInsert(t, store, "common", 1, cache.Dependencies{Keys: []string{"master", "provider"}}, cache.NoExpiration())
	mustInsert(t, store, "lang:en", 2, cache.Dependencies{Keys: []string{"master", "provider", "common"}}, cache.NoExpiration())
	mustInsert(t, store, "lang:sv", 3, cache.Dependencies{Keys: []string{"master", "provider", "common"}}, cache.NoExpiration())
	mustInsert(t, store, "other", 4, cache.Dependencies{Keys: []string{"master"}, Files: []string{"menu.xml"}}, cache.NoExpiration())

	if got := store.Dependents("common"); len(got) != 2 {
		t.Fatalf("expected 2 dependents of common, got %v", got)
	}

	if err := store.RemoveLocal(ctx, "common"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "common", false)
	mustHave(t, store, "lang:en", false)
	mustHave(t, store, "lang:sv", false)
	mustHave(t, store, "other", true)

	if err := store.RemoveLocal(ctx, "menu.xml"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "other", false)

	if got := store.Dependents("master"); len(got) != 0 {
		t.Errorf("expected master index to be empty, got %v", got)
	}
}

func TestSturdycStore_RemoveMasterEvictsEverything(t *testing.T) {
	store := newTestStore(t, newFakeClock())

	for i := 0; i < 5; i++ {
		mustInsert(t, store, fmt.Sprintf("k%d", i), i, cache.Dependencies{Keys: []string{"master"}}, cache.NoExpiration())
	}
	if err := store.RemoveLocal(context.Background(), "master"); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}

func TestSturdycStore_SlidingExpiration(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(t, clock)

	mustInsert(t, store, "a", 1, cache.Dependencies{}, cache.SlidingExpiration(time.Minute))

	clock.Advance(50 * time.Second)
	mustHave(t, store, "a", true)

	clock.Advance(50 * time.Second)
	mustHave(t, store, "a", true)

	clock.Advance(2 * time.Minute)
	mustHave(t, store, "a", false)
}

func TestSturdycStore_AbsoluteExpiration(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(t, clock)

	mustInsert(t, store, "a", 1, cache.Dependencies{}, cache.AbsoluteExpiration(clock.Now().Add(time.Minute)))

	clock.Advance(30 * time.Second)
	mustHave(t, store, "a", true)

	clock.Advance(30 * time.Second)
	mustHave(t, store, "a", false)
}

func TestSturdycStore_ExpiredDependencyEvictsDependents(t *testing.T) {
	clock := newFakeClock()
	store := newTestStore(t, clock)

	mustInsert(t, store, "common", 1, cache.Dependencies{}, cache.SlidingExpiration(time.Minute))
	mustInsert(t, store, "lang", 2, cache.Dependencies{Keys: []string{"common"}}, cache.NoExpiration())

	clock.Advance(2 * time.Minute)
	mustHave(t, store, "common", false)
	mustHave(t, store, "lang", false)
}

func TestSturdycStore_ReinsertIsIdempotent(t *testing.T) {
	store := newTestStore(t, newFakeClock())
	deps := cache.Dependencies{Keys: []string{"master", "common"}}

	mustInsert(t, store, "lang", "v", deps, cache.NoExpiration())
	mustInsert(t, store, "lang", "v", deps, cache.NoExpiration())

	if store.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", store.Len())
	}
	if got := store.Dependents("common"); len(got) != 1 || got[0] != "lang" {
		t.Errorf("unexpected dependents %v", got)
	}
}

func TestSturdycStore_ReinsertWithNewDependencies(t *testing.T) {
	store := newTestStore(t, newFakeClock())

	mustInsert(t, store, "lang", "v1", cache.Dependencies{Keys: []string{"old"}}, cache.NoExpiration())
	mustInsert(t, store, "lang", "v2", cache.Dependencies{Keys: []string{"new"}}, cache.NoExpiration())

	if got := store.Dependents("old"); len(got) != 0 {
		t.Errorf("old dependency should be unindexed, got %v", got)
	}
	if err := store.RemoveLocal(context.Background(), "old"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "lang", true)
}

func TestSturdycStore_SelfDependencyIgnored(t *testing.T) {
	store := newTestStore(t, newFakeClock())

	mustInsert(t, store, "a", 1, cache.Dependencies{Keys: []string{"a", "b"}}, cache.NoExpiration())
	if got := store.Dependents("a"); len(got) != 0 {
		t.Errorf("self dependency should be dropped, got %v", got)
	}
	if err := store.RemoveLocal(context.Background(), "a"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "a", false)
}

func TestSturdycStore_Closed(t *testing.T) {
	store := newTestStore(t, newFakeClock())
	ctx := context.Background()
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if _, _, err := store.Get(ctx, "a"); !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("Get on closed store: %v", err)
	}
	if err := store.Insert(ctx, "a", 1, cache.Dependencies{}, cache.NoExpiration()); !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("Insert on closed store: %v", err)
	}
	if err := store.RemoveLocal(ctx, "a"); !errors.Is(err, cache.ErrUnavailable) {
		t.Errorf("RemoveLocal on closed store: %v", err)
	}
}

func TestSturdycStore_ConcurrentWriters(t *testing.T) {
	store := newTestStore(t, newFakeClock())
	ctx := context.Background()
	deps := cache.Dependencies{Keys: []string{"master", "common"}}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k%d", i%10)
				if _, _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get: %v", err)
				}
				if err := store.Insert(ctx, key, i%10, deps, cache.NoExpiration()); err != nil {
					t.Errorf("Insert: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		v, ok, _ := store.Get(ctx, fmt.Sprintf("k%d", i))
		if !ok || v != i {
			t.Errorf("k%d = %v, %v", i, v, ok)
		}
	}
	if err := store.RemoveLocal(ctx, "common"); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("expected all keys evicted through common, got %d", store.Len())
	}
}

func TestSturdycStore_IndexBoundedByCapacity(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.Capacity = 10
	cfg.NumShards = 1
	store, err := NewSturdycStore(cfg)
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 5000; i++ {
		deps := cache.Dependencies{Keys: []string{cache.MasterKey, fmt.Sprintf("common-%d", i)}}
		if err := store.Insert(ctx, fmt.Sprintf("k%d", i), i, deps, cache.NoExpiration()); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if got := store.IndexSize(); got > 4*cfg.Capacity {
			t.Fatalf("index holds %d memberships after %d inserts, want at most %d", got, i+1, 4*cfg.Capacity)
		}
	}

	if got := store.Len(); got > cfg.Capacity {
		t.Errorf("expected at most %d entries, got %d", cfg.Capacity, got)
	}
	if got := len(store.Dependents(cache.MasterKey)); got > 4*cfg.Capacity {
		t.Errorf("expected at most %d dependents of the master key, got %d", 4*cfg.Capacity, got)
	}

	if err := store.RemoveLocal(ctx, cache.MasterKey); err != nil {
		t.Fatal(err)
	}
	if store.Len() != 0 {
		t.Errorf("expected removing the master key to clear the store, got %d entries", store.Len())
	}
}

func TestSturdycStore_EvictedKeyDoesNotInheritOldDependencies(t *testing.T) {
	store := newTestStore(t, newFakeClock())
	ctx := context.Background()

	mustInsert(t, store, "lang", "v1", cache.Dependencies{Keys: []string{"old"}}, cache.NoExpiration())
	store.client.Delete("lang")
	mustInsert(t, store, "lang", "v2", cache.Dependencies{Keys: []string{"new"}}, cache.NoExpiration())

	if err := store.RemoveLocal(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "lang", true)

	if err := store.RemoveLocal(ctx, "new"); err != nil {
		t.Fatal(err)
	}
	mustHave(t, store, "lang", false)
}

func TestSturdycStore_WarnsWhenTTLCapsExpiration(t *testing.T) {
	clock := newFakeClock()
	var logs bytes.Buffer
	cfg := cache.DefaultConfig()
	store, err := NewSturdycStore(cfg,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}

	mustInsert(t, store, "a", 1, cache.Dependencies{}, cache.SlidingExpiration(cfg.TTL/2))
	if logs.Len() != 0 {
		t.Fatalf("unexpected warning: %s", logs.String())
	}

	mustInsert(t, store, "b", 1, cache.Dependencies{}, cache.SlidingExpiration(2*cfg.TTL))
	mustInsert(t, store, "c", 1, cache.Dependencies{}, cache.SlidingExpiration(2*cfg.TTL))
	mustInsert(t, store, "d", 1, cache.Dependencies{}, cache.AbsoluteExpiration(clock.Now().Add(3*cfg.TTL)))

	if got := strings.Count(logs.String(), "exceeds store ttl"); got != 2 {
		t.Errorf("expected one warning per policy, got %d:\n%s", got, logs.String())
	}
}
