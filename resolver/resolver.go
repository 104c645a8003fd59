package resolver

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/goliatone/go-typed-content/activation"
	"github.com/goliatone/go-typed-content/cache"
	"github.com/goliatone/go-typed-content/content"
	"github.com/goliatone/go-typed-content/internal/naming"
	"github.com/goliatone/go-typed-content/metrics"
	"github.com/goliatone/go-typed-content/registry"
)

const activateOperation = "activate"

// Resolver turns generic records into typed views and caches them.
type Resolver struct {
	registry    *registry.Registry
	activator   activation.Activator
	coordinator *cache.Coordinator
	settings    cache.SettingsProvider
	providerKey func(content.Reference) string
	logger      *slog.Logger
	counters    *metrics.Counters
	latency     *metrics.LatencyTracker
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry uses an existing registry instead of a new empty one.
func WithRegistry(reg *registry.Registry) Option {
	return func(r *Resolver) {
		if reg != nil {
			r.registry = reg
		}
	}
}

// WithActivator replaces the default activation.TypedActivator.
func WithActivator(a activation.Activator) Option {
	return func(r *Resolver) {
		if a != nil {
			r.activator = a
		}
	}
}

// WithSettings sets the provider of per type cache settings.
func WithSettings(p cache.SettingsProvider) Option {
	return func(r *Resolver) {
		if p != nil {
			r.settings = p
		}
	}
}

// WithProviderKey overrides how the provider dependency key of a reference
// is computed. The default is cache.ProviderKey(ref.ProviderName).
func WithProviderKey(fn func(content.Reference) string) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.providerKey = fn
		}
	}
}

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLatencyTracker records activation latency in tracker.
func WithLatencyTracker(tracker *metrics.LatencyTracker) Option {
	return func(r *Resolver) {
		if tracker != nil {
			r.latency = tracker
		}
	}
}

// New creates a Resolver writing through coordinator.
func New(coordinator *cache.Coordinator, opts ...Option) *Resolver {
	r := &Resolver{
		registry:    registry.New(),
		activator:   activation.NewTypedActivator(),
		coordinator: coordinator,
		settings:    cache.StaticSettings(cache.DefaultConfig().DefaultSettings()),
		providerKey: func(ref content.Reference) string { return cache.ProviderKey(ref.ProviderName) },
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		counters:    metrics.NewCounters(),
		latency:     metrics.NewLatencyTracker(0.01),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the type registry.
func (r *Resolver) Registry() *registry.Registry {
	return r.registry
}

// Register binds a type id to a descriptor.
func (r *Resolver) Register(id int, desc reflect.Type) error {
	return r.registry.Register(id, desc)
}

// ResolveDescriptor returns the descriptor bound to id.
func (r *Resolver) ResolveDescriptor(id int) (reflect.Type, bool) {
	return r.registry.ResolveDescriptor(id)
}

// ResolveID returns the id bound to desc.
func (r *Resolver) ResolveID(desc reflect.Type) (int, bool) {
	return r.registry.ResolveID(desc)
}

// ConvertToTyped returns the typed view of rec. Records of unregistered types
// and records that already are typed views are returned unchanged.
func (r *Resolver) ConvertToTyped(ctx context.Context, rec content.Record) (content.Record, error) {
	if rec == nil {
		return nil, nil
	}

	desc, ok := r.registry.ResolveDescriptor(rec.TypeID())
	if !ok || content.IsTyped(rec) {
		if ok {
			r.counters.Hit()
			r.logger.Debug("cache hit", "type", naming.TypeName(desc), "ref", rec.Reference().String())
		}
		return rec, nil
	}
	r.counters.Miss()

	start := time.Now()
	typed, err := r.activator.Activate(rec, desc)
	r.latency.Record(activateOperation, time.Since(start))
	if err == nil && typed == nil {
		err = activation.ErrNilInstance
	}
	if err != nil {
		return nil, activation.Wrap(rec, desc, err)
	}
	r.counters.Activation()

	if workID := rec.WorkID(); workID != 0 {
		r.counters.SkippedDraft()
		r.logger.Debug("skipping page with work id", "work_id", workID, "ref", rec.Reference().String())
		return typed, nil
	}

	r.cacheTyped(ctx, rec, desc, typed)
	return typed, nil
}

func (r *Resolver) cacheTyped(ctx context.Context, rec content.Record, desc reflect.Type, typed content.Typed) {
	ref := rec.Reference()
	settings := r.settings.CacheSettings(desc)

	if settings.CancelCaching {
		r.counters.Cancelled()
		if err := r.coordinator.Invalidate(ctx, cache.CommonKey(ref)); err != nil {
			r.storeFailed(err, ref)
		}
		return
	}

	if extra := cache.KeyDependenciesFromContext(ctx); len(extra) > 0 {
		settings = settings.Clone()
		settings.KeyDependencies = append(settings.KeyDependencies, extra...)
	}

	providerKey := r.providerKey(ref)
	if err := r.coordinator.MarkCommonKeyTouched(ctx, ref, providerKey); err != nil {
		r.storeFailed(err, ref)
		return
	}

	r.logger.Debug("saving to cache", "type", naming.TypeName(desc), "ref", ref.String(), "language", rec.LanguageBranch())

	deps := r.coordinator.Dependencies(ref, providerKey, settings)
	keys := []string{cache.LanguageKey(ref, rec.LanguageBranch())}
	if rec.IsMasterLanguageBranch() {
		keys = append(keys, cache.MasterLanguageKey(ref))
	}

	for _, key := range keys {
		if err := r.coordinator.Insert(ctx, key, typed, deps, settings.Expiration); err != nil {
			r.storeFailed(err, ref)
			return
		}
		r.counters.Write()
	}
}

func (r *Resolver) storeFailed(err error, ref content.Reference) {
	r.counters.StoreFailure()
	r.logger.Warn("cache store failure, continuing uncached", "ref", ref.String(), "error", err)
}

// Lookup returns the cached typed view of ref in the given language branch.
// An empty branch reads the master language entry. Store failures are
// reported as a miss.
func (r *Resolver) Lookup(ctx context.Context, ref content.Reference, languageBranch string) (content.Typed, bool) {
	key := cache.MasterLanguageKey(ref)
	if languageBranch != "" {
		key = cache.LanguageKey(ref, languageBranch)
	}

	v, ok, err := r.coordinator.Get(ctx, key)
	if err != nil {
		r.storeFailed(err, ref)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	typed, ok := v.(content.Typed)
	return typed, ok
}

// Invalidate removes every cached view of ref, in all language branches.
func (r *Resolver) Invalidate(ctx context.Context, ref content.Reference) error {
	return r.coordinator.Invalidate(ctx, cache.CommonKey(ref))
}

// InvalidateAll removes every cached typed view.
func (r *Resolver) InvalidateAll(ctx context.Context) error {
	return r.coordinator.Invalidate(ctx, cache.MasterKey)
}

// Stats is a snapshot of resolution counters and activation latency.
type Stats struct {
	metrics.Snapshot
	Activation metrics.Stats
}

// Stats returns the current resolution statistics.
func (r *Resolver) Stats() Stats {
	s := Stats{Snapshot: r.counters.Snapshot()}
	if a, err := r.latency.GetStats(activateOperation); err == nil {
		s.Activation = a
	}
	return s
}
