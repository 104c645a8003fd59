// Package cache defines the cache contract used by the typed content resolver:
// the Store interface, key derivation, per type cache settings and the
// Coordinator that writes typed views with their dependencies.
//
// # Keys
//
// Every cached typed view is keyed per item and language branch:
//
//	DataFactoryCache.PageLanguage::<ref>::<language>
//	DataFactoryCache.PageMasterLanguage::<ref>
//
// where <ref> is content.Reference.String without the work version. Both
// entries depend on three tokens:
//
//	DataFactoryCache.MasterKey            every cached view
//	DataFactoryCache.Provider::<name>     every view from one provider
//	DataFactoryCache.PageCommon::<ref>    every language variant of one item
//
// The common key holds a CommonMarker with a sliding expiration. Removing it,
// or letting it expire, evicts every language variant of the item.
//
// Keys are built by a KeySerializer, which joins a prefix and its arguments
// with KeySeparator. Stringers use their String method, slices are rendered
// as [a,b] and nil values as "nil".
//
// # Store
//
// A Store keeps values with Dependencies and an Expiration. Removing a key
// or any dependency token removes every entry depending on it, transitively.
// internal/cacheinfra provides the default sturdyc backed implementation;
// pkg/testsupport provides a recording fake.
//
// # Settings
//
// A SettingsProvider returns Settings for a content type descriptor: whether
// caching is cancelled, extra key and file dependencies, and the expiration.
// StaticSettings applies one value to every type, SettingsByType resolves by
// descriptor or snake_case type name, and LoadSettingsYAML reads the latter
// from a document:
//
//	default:
//	  expiration:
//	    sliding: 10m
//	types:
//	  article_page:
//	    key_dependencies: [navigation]
//	  search_page:
//	    cancel_caching: true
//
// Request scoped dependencies can be attached with WithKeyDependencies.
//
// # Configuration
//
// Config sizes the default store and supplies the default sliding window:
//
//	cfg := cache.DefaultConfig()
//	cfg.Capacity = 50000
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
package cache
