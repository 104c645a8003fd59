package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-typed-content/content"
)

// Coordinator derives cache keys and dependencies for typed content and
// mediates reads and writes against a Store.
type Coordinator struct {
	store         Store
	logger        *slog.Logger
	now           func() time.Time
	markerTimeout time.Duration
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the logger used for cache tracing.
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used for marker timestamps.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithMarkerTimeout sets the sliding expiration of common key markers.
func WithMarkerTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.markerTimeout = d
		}
	}
}

// NewCoordinator creates a Coordinator writing to store.
func NewCoordinator(store Store, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:         store,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           time.Now,
		markerTimeout: DefaultConfig().DefaultSliding,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dependencies returns the dependency set of a typed entry of ref:
// MasterKey, the provider key and the item's common key, followed by the
// extra keys and files from settings.
func (c *Coordinator) Dependencies(ref content.Reference, providerKey string, settings Settings) Dependencies {
	keys := make([]string, 0, 3+len(settings.KeyDependencies))
	keys = append(keys, MasterKey, providerKey, CommonKey(ref))
	keys = append(keys, settings.KeyDependencies...)

	return Dependencies{
		Keys:  dedupeStrings(keys),
		Files: dedupeStrings(append([]string(nil), settings.FileDependencies...)),
	}
}

// Get reads key from the store.
func (c *Coordinator) Get(ctx context.Context, key string) (any, bool, error) {
	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if ok {
		c.logger.Debug("cache hit", "key", key)
	} else {
		c.logger.Debug("cache miss", "key", key)
	}
	return v, ok, nil
}

// Insert writes value under key.
func (c *Coordinator) Insert(ctx context.Context, key string, value any, deps Dependencies, exp Expiration) error {
	if err := c.store.Insert(ctx, key, value, deps, exp); err != nil {
		return fmt.Errorf("cache insert %s: %w", key, err)
	}
	c.logger.Debug("cache write", "key", key, "expiration", exp.String(), "dependencies", len(deps.Keys)+len(deps.Files))
	return nil
}

// MarkCommonKeyTouched stores a CommonMarker under CommonKey(ref) unless one
// is already present. The marker depends on MasterKey and providerKey only.
func (c *Coordinator) MarkCommonKeyTouched(ctx context.Context, ref content.Reference, providerKey string) error {
	key := CommonKey(ref)

	_, ok, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	deps := Dependencies{Keys: dedupeStrings([]string{MasterKey, providerKey})}
	marker := CommonMarker{Ticks: c.now().UTC().UnixNano()}
	return c.Insert(ctx, key, marker, deps, SlidingExpiration(c.markerTimeout))
}

// Invalidate removes key from the local store, evicting dependents with it.
func (c *Coordinator) Invalidate(ctx context.Context, key string) error {
	if err := c.store.RemoveLocal(ctx, key); err != nil {
		return fmt.Errorf("cache remove %s: %w", key, err)
	}
	c.logger.Debug("cache remove", "key", key)
	return nil
}
