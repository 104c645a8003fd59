package di

import (
	"io"
	"log/slog"
	"time"

	"github.com/goliatone/go-typed-content/activation"
	"github.com/goliatone/go-typed-content/cache"
	"github.com/goliatone/go-typed-content/internal/cacheinfra"
	"github.com/goliatone/go-typed-content/metrics"
	"github.com/goliatone/go-typed-content/registry"
	"github.com/goliatone/go-typed-content/repositorycache"
	"github.com/goliatone/go-typed-content/resolver"
)

// Container wires the typed content resolver and its collaborators. It owns
// a single store, registry and resolver for the lifetime of the process.
type Container struct {
	config      cache.Config
	store       *cacheinfra.SturdycStore
	coordinator *cache.Coordinator
	registry    *registry.Registry
	settings    cache.SettingsProvider
	latency     *metrics.LatencyTracker
	resolver    *resolver.Resolver
}

type options struct {
	logger    *slog.Logger
	now       func() time.Time
	settings  cache.SettingsProvider
	activator activation.Activator
}

// Option customizes the container.
type Option func(*options)

// WithLogger sets the logger shared by the store, coordinator and resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the time source used for expiration.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSettings sets the per type cache settings provider. The default
// applies Config.DefaultSettings to every type.
func WithSettings(p cache.SettingsProvider) Option {
	return func(o *options) { o.settings = p }
}

// WithActivator replaces the default activator.
func WithActivator(a activation.Activator) Option {
	return func(o *options) { o.activator = a }
}

// NewContainer creates a container from config. The config is validated
// before the store is created. Settings registered on a *cache.SettingsByType
// must not use sliding windows longer than config.TTL.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	o := options{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.settings == nil {
		o.settings = cache.NewSettingsByType(config.DefaultSettings())
	}
	if o.activator == nil {
		o.activator = activation.NewTypedActivator()
	}

	store, err := cacheinfra.NewSturdycStore(config,
		cacheinfra.WithLogger(o.logger),
		cacheinfra.WithClock(o.now),
	)
	if err != nil {
		return nil, err
	}
	if sp, ok := o.settings.(*cache.SettingsByType); ok {
		if err := sp.ValidateWith(config.ValidateSettings); err != nil {
			return nil, err
		}
	}

	coordinator := cache.NewCoordinator(store,
		cache.WithCoordinatorLogger(o.logger),
		cache.WithClock(o.now),
		cache.WithMarkerTimeout(config.DefaultSliding),
	)
	reg := registry.New()
	latency := metrics.NewLatencyTracker(0.01)

	return &Container{
		config:      config,
		store:       store,
		coordinator: coordinator,
		registry:    reg,
		settings:    o.settings,
		latency:     latency,
		resolver: resolver.New(coordinator,
			resolver.WithRegistry(reg),
			resolver.WithActivator(o.activator),
			resolver.WithSettings(o.settings),
			resolver.WithLogger(o.logger),
			resolver.WithLatencyTracker(latency),
		),
	}, nil
}

// NewContainerWithDefaults creates a container using cache.DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// Resolver returns the shared resolver.
func (c *Container) Resolver() *resolver.Resolver {
	return c.resolver
}

// Registry returns the type registry used by the resolver.
func (c *Container) Registry() *registry.Registry {
	return c.registry
}

// Coordinator returns the cache coordinator.
func (c *Container) Coordinator() *cache.Coordinator {
	return c.coordinator
}

// Store returns the underlying cache store.
func (c *Container) Store() *cacheinfra.SturdycStore {
	return c.store
}

// Settings returns the cache settings provider.
func (c *Container) Settings() cache.SettingsProvider {
	return c.settings
}

// Latency returns the tracker recording activation latency.
func (c *Container) Latency() *metrics.LatencyTracker {
	return c.latency
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Close releases the store. Resolution keeps working uncached afterwards.
func (c *Container) Close() error {
	return c.store.Close()
}

// NewTypedRepository wraps source so that its reads return typed views
// resolved through the container's resolver.
func NewTypedRepository(container *Container, source repositorycache.Source) *repositorycache.TypedRepository {
	return repositorycache.New(source, container.resolver)
}
