package cache

import (
	"context"
)

type keyDependenciesContextKey struct{}

// WithKeyDependencies attaches extra dependency keys to ctx. Entries written
// while resolving under ctx also depend on them.
func WithKeyDependencies(ctx context.Context, keys ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(keys) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(KeyDependenciesFromContext(ctx), keys...))
	if len(combined) == 0 {
		return ctx
	}

	return context.WithValue(ctx, keyDependenciesContextKey{}, combined)
}

// KeyDependenciesFromContext returns the keys attached by WithKeyDependencies.
func KeyDependenciesFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if keys, ok := ctx.Value(keyDependenciesContextKey{}).([]string); ok {
		return append([]string(nil), keys...)
	}
	return nil
}
