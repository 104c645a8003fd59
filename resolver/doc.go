// Package resolver converts generic content records into their typed views
// and caches the result for published content.
//
// # Overview
//
// A Resolver is the single entry point consulted on every content fetch. It
// owns the type registry and delegates the two expensive concerns to injected
// collaborators: an activation.Activator builds typed views, and a
// cache.Coordinator writes them to the cache store.
//
// # Resolution
//
// ConvertToTyped walks a fixed chain and stops at the first branch that
// applies:
//
//  1. Look up the descriptor for the record's type id.
//  2. Unknown type, or a record that already is a typed view: return it as is.
//  3. Activate the record.
//  4. Draft versions (non zero work id) are returned without touching the cache.
//  5. Consult the cache settings of the descriptor. Cancelled caching removes
//     the item's common key marker. Otherwise the marker is ensured and the
//     typed view is written under the language key, and under the master
//     language key when the record is on its master branch.
//
// Every written entry depends on cache.MasterKey, the provider key and the
// item's common key, so removing the common key evicts all language variants
// of the item at once.
//
// # Error Handling
//
// Activation failures are returned as *activation.ActivationError and leave
// the cache untouched. Cache store failures never reach the caller: they are
// logged at warn level, counted, and the typed view is returned uncached.
//
// # Usage
//
//	store, _ := cacheinfra.NewSturdycStore(cache.DefaultConfig())
//	r := resolver.New(cache.NewCoordinator(store), resolver.WithLogger(logger))
//	if err := registry.RegisterType[*ArticlePage](r.Registry(), 5); err != nil {
//		return err
//	}
//	rec, err := r.ConvertToTyped(ctx, page)
//
// The pkg/di container wires the same graph from a cache.Config.
package resolver
