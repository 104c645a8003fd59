// Package content defines the generic content record consumed by the resolver
// and the marker that identifies records already resolved into a typed view.
//
// A Page carries everything a content store knows about a record: its numeric
// type identifier, its identity, the language branch and version it belongs to,
// and a loose property bag. Typed views are plain structs that embed TypedPage:
//
//	type ArticlePage struct {
//		content.TypedPage
//		Heading string `msgpack:"heading" required:"true"`
//		Body    string `msgpack:"body"`
//	}
//
// Embedding TypedPage is the only way to satisfy the Typed interface, which is
// what the resolver uses to avoid activating the same record twice.
package content
