package cacheinfra

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goliatone/go-typed-content/cache"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

type entry struct {
	value       any
	deps        []string
	fingerprint uint64
	exp         cache.Expiration
	lastAccess  atomic.Int64
}

// SturdycStore is a dependency aware cache.Store backed by sturdyc.
// Reads are lock free; inserts and removals are serialized so that the
// dependency index always matches the stored entries.
//
// sturdyc evicts entries on its own when it runs out of capacity or their TTL
// passes. Index members left behind by those evictions are pruned once the
// index holds twice as many memberships as it did after the previous prune.
type SturdycStore struct {
	mu          sync.Mutex
	client      *sturdyc.Client[*entry]
	dependents  *xsync.MapOf[string, *xsync.MapOf[string, struct{}]]
	memberships int
	pruneAt     int
	capacity    int
	ttl         time.Duration
	warned      *xsync.MapOf[string, struct{}]
	now         func() time.Time
	logger      *slog.Logger
	closed      atomic.Bool
}

var _ cache.Store = (*SturdycStore)(nil)

// Option configures a SturdycStore.
type Option func(*SturdycStore)

// WithLogger sets the logger used for eviction tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(s *SturdycStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used to evaluate expiration.
func WithClock(now func() time.Time) Option {
	return func(s *SturdycStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSturdycStore validates cfg and creates a store.
//
// Capacity, NumShards, TTL and EvictionPercentage are passed to sturdyc.New;
// EvictionInterval maps to sturdyc.WithEvictionInterval.
func NewSturdycStore(cfg cache.Config, opts ...Option) (*SturdycStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var sturdyOpts []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		sturdyOpts = append(sturdyOpts, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	s := &SturdycStore{
		client:     sturdyc.New[*entry](cfg.Capacity, cfg.NumShards, cfg.TTL, cfg.EvictionPercentage, sturdyOpts...),
		dependents: xsync.NewMapOf[string, *xsync.MapOf[string, struct{}]](),
		pruneAt:    2 * cfg.Capacity,
		capacity:   cfg.Capacity,
		ttl:        cfg.TTL,
		warned:     xsync.NewMapOf[string, struct{}](),
		now:        time.Now,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get implements cache.Store. Expired entries are removed and reported as a miss.
func (s *SturdycStore) Get(ctx context.Context, key string) (any, bool, error) {
	if s.closed.Load() {
		return nil, false, cache.ErrUnavailable
	}

	e, ok := s.client.Get(key)
	if !ok {
		return nil, false, nil
	}

	now := s.now()
	if e.exp.Expired(now, time.Unix(0, e.lastAccess.Load())) {
		s.mu.Lock()
		if cur, ok := s.client.Get(key); ok && cur == e {
			s.remove(key, map[string]struct{}{})
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	e.lastAccess.Store(now.UnixNano())
	return e.value, true, nil
}

// Insert implements cache.Store. Re-inserting a key with the same dependencies
// replaces the value without touching the dependency index.
func (s *SturdycStore) Insert(ctx context.Context, key string, value any, deps cache.Dependencies, exp cache.Expiration) error {
	if s.closed.Load() {
		return cache.ErrUnavailable
	}

	tokens := slices.DeleteFunc(deps.Tokens(), func(t string) bool { return t == key })
	now := s.now()
	e := &entry{
		value:       value,
		deps:        tokens,
		fingerprint: fingerprint(tokens),
		exp:         exp,
	}
	e.lastAccess.Store(now.UnixNano())
	s.warnIfCapped(exp, now)

	s.mu.Lock()
	defer s.mu.Unlock()

	previous, existed := s.client.Get(key)
	s.client.Set(key, e)

	if existed && previous.fingerprint == e.fingerprint {
		return nil
	}
	if existed {
		s.unindex(key, previous.deps)
	}
	for _, token := range tokens {
		set, _ := s.dependents.LoadOrCompute(token, func() *xsync.MapOf[string, struct{}] {
			return xsync.NewMapOf[string, struct{}]()
		})
		if _, loaded := set.LoadOrStore(key, struct{}{}); !loaded {
			s.memberships++
		}
	}
	if s.memberships > s.pruneAt {
		s.prune()
	}
	return nil
}

// RemoveLocal implements cache.Store. key may be a cache key or any dependency
// token; every entry depending on it is removed as well.
func (s *SturdycStore) RemoveLocal(ctx context.Context, key string) error {
	if s.closed.Load() {
		return cache.ErrUnavailable
	}

	visited := map[string]struct{}{}
	s.mu.Lock()
	s.remove(key, visited)
	s.mu.Unlock()
	if len(visited) > 1 {
		s.logger.Debug("cache cascade", "key", key, "removed", len(visited)-1)
	}
	return nil
}

// Len returns the number of stored entries.
func (s *SturdycStore) Len() int {
	return s.client.Size()
}

// Keys returns the stored keys in no particular order.
func (s *SturdycStore) Keys() []string {
	return s.client.ScanKeys()
}

// Dependents returns the keys currently depending on token.
func (s *SturdycStore) Dependents(token string) []string {
	set, ok := s.dependents.Load(token)
	if !ok {
		return nil
	}
	out := make([]string, 0, set.Size())
	set.Range(func(k string, _ struct{}) bool {
		out = append(out, k)
		return true
	})
	slices.Sort(out)
	return out
}

// IndexSize returns the number of memberships held by the dependency index.
func (s *SturdycStore) IndexSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberships
}

// Close makes every further operation fail with cache.ErrUnavailable.
func (s *SturdycStore) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *SturdycStore) remove(token string, visited map[string]struct{}) {
	if _, seen := visited[token]; seen {
		return
	}
	visited[token] = struct{}{}

	if e, ok := s.client.Get(token); ok {
		s.client.Delete(token)
		s.unindex(token, e.deps)
	}

	dependents, ok := s.dependents.LoadAndDelete(token)
	if !ok {
		return
	}
	s.memberships -= dependents.Size()
	dependents.Range(func(key string, _ struct{}) bool {
		// A key evicted by sturdyc and inserted again may no longer depend on token.
		if e, ok := s.client.Get(key); ok && !slices.Contains(e.deps, token) {
			return true
		}
		s.remove(key, visited)
		return true
	})
}

func (s *SturdycStore) unindex(key string, tokens []string) {
	for _, token := range tokens {
		set, ok := s.dependents.Load(token)
		if !ok {
			continue
		}
		if _, loaded := set.LoadAndDelete(key); loaded {
			s.memberships--
		}
		if set.Size() == 0 {
			s.dependents.Delete(token)
		}
	}
}

// prune drops index members whose entry is gone or no longer depends on the
// token. Callers hold s.mu.
func (s *SturdycStore) prune() {
	before := s.memberships
	s.dependents.Range(func(token string, set *xsync.MapOf[string, struct{}]) bool {
		set.Range(func(key string, _ struct{}) bool {
			if e, ok := s.client.Get(key); !ok || !slices.Contains(e.deps, token) {
				set.Delete(key)
				s.memberships--
			}
			return true
		})
		if set.Size() == 0 {
			s.dependents.Delete(token)
		}
		return true
	})
	s.pruneAt = max(2*s.capacity, 2*s.memberships)
	s.logger.Debug("cache index pruned", "before", before, "after", s.memberships)
}

// warnIfCapped logs once per policy when the store TTL ends entries earlier
// than their expiration asks for.
func (s *SturdycStore) warnIfCapped(exp cache.Expiration, now time.Time) {
	var policy string
	switch {
	case exp.Kind == cache.ExpireSliding && exp.Window > s.ttl:
		policy = exp.String()
	case exp.Kind == cache.ExpireAbsolute && exp.Deadline.After(now.Add(s.ttl)):
		policy = "absolute"
	default:
		return
	}
	if _, seen := s.warned.LoadOrStore(policy, struct{}{}); seen {
		return
	}
	s.logger.Warn("cache expiration exceeds store ttl, entries end at the ttl",
		"expiration", exp.String(), "ttl", s.ttl)
}

func fingerprint(tokens []string) uint64 {
	h := xxhash.New()
	for _, t := range tokens {
		_, _ = h.WriteString(t)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
