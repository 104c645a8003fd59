package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that the cache store cannot be read or written.
var ErrUnavailable = errors.New("cache: store unavailable")

// Store is the external cache the coordinator writes typed content to.
// Implementations synchronize themselves; a Get followed by an Insert is not
// atomic and concurrent writers of one key resolve as last write wins.
type Store interface {
	// Get returns the value stored under key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) (any, bool, error)

	// Insert stores value under key. Removing any of the dependency tokens
	// afterwards evicts the entry.
	Insert(ctx context.Context, key string, value any, deps Dependencies, exp Expiration) error

	// RemoveLocal evicts key, and everything depending on it, from this
	// process only.
	RemoveLocal(ctx context.Context, key string) error
}

// Dependencies lists the invalidation tokens of an entry. Keys are other cache
// keys, Files are external file identifiers; the store tracks both the same way.
type Dependencies struct {
	Keys  []string
	Files []string
}

// Tokens returns keys then files, without duplicates.
func (d Dependencies) Tokens() []string {
	return dedupeStrings(append(append([]string(nil), d.Keys...), d.Files...))
}

// IsEmpty reports whether there are no dependencies.
func (d Dependencies) IsEmpty() bool {
	return len(d.Keys) == 0 && len(d.Files) == 0
}

// ExpirationKind tells how an entry expires.
type ExpirationKind int

const (
	// ExpireNever leaves expiration to the store's own eviction.
	ExpireNever ExpirationKind = iota
	// ExpireAbsolute expires at a fixed wall clock time.
	ExpireAbsolute
	// ExpireSliding expires after a period without access.
	ExpireSliding
)

// Expiration is an entry lifetime policy. The zero value never expires.
type Expiration struct {
	Kind     ExpirationKind
	Deadline time.Time
	Window   time.Duration
}

// NoExpiration returns the zero policy.
func NoExpiration() Expiration { return Expiration{} }

// AbsoluteExpiration expires entries at deadline.
func AbsoluteExpiration(deadline time.Time) Expiration {
	return Expiration{Kind: ExpireAbsolute, Deadline: deadline}
}

// SlidingExpiration expires entries that were not read for window.
func SlidingExpiration(window time.Duration) Expiration {
	return Expiration{Kind: ExpireSliding, Window: window}
}

// Expired reports whether an entry last read at lastAccess is expired at now.
func (e Expiration) Expired(now, lastAccess time.Time) bool {
	switch e.Kind {
	case ExpireAbsolute:
		return !now.Before(e.Deadline)
	case ExpireSliding:
		return now.Sub(lastAccess) >= e.Window
	default:
		return false
	}
}

// String implements fmt.Stringer.
func (e Expiration) String() string {
	switch e.Kind {
	case ExpireAbsolute:
		return "absolute(" + e.Deadline.UTC().Format(time.RFC3339) + ")"
	case ExpireSliding:
		return "sliding(" + e.Window.String() + ")"
	default:
		return "none"
	}
}

func dedupeStrings(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
