// Package repositorycache decorates a page repository so that reads return
// typed content views backed by the resolver cache.
//
// # Overview
//
// TypedRepository wraps a Source, the read half of a go-repository-bun
// repository of *content.Page, and a Converter, normally a
// *resolver.Resolver. Every page the source returns is converted to the typed
// view registered for its content type.
//
// # Basic Usage
//
//	base := repository.NewRepository[*content.Page](db, handlers)
//	repo := repositorycache.New(base, container.Resolver())
//
//	page, err := repo.GetByReference(ctx, content.Reference{ID: 42}, "en")
//	pages, total, err := repo.List(ctx, repositorycache.ByType(5))
//
// # Read Path
//
// GetByReference consults the cache first:
//
//  1. Look up the cached typed view for the reference and language branch
//  2. On a hit, return it without querying the source
//  3. On a miss, load the page with ByReference and ByLanguage criteria
//  4. Convert it, which caches published pages
//
// Draft references (non zero work id) always read through to the source.
// Get and List always query the source and convert the results.
//
// # Invalidation
//
// Invalidate evicts every language variant of one item by removing its common
// key. InvalidateAll removes the master key, which every cached view depends
// on. Callers that need additional eviction triggers attach them to the
// request context with cache.WithKeyDependencies before reading.
//
// # Error Handling
//
// Source errors and activation errors are returned unchanged. Cache store
// failures are absorbed by the resolver.
package repositorycache
