package cache

import (
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrExceedsTTL is returned for expirations the store TTL would cut short.
var ErrExceedsTTL = errors.New("cache: expiration exceeds store ttl")

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Capacity is the maximum number of entries the store holds.
	Capacity int

	// NumShards is the number of store shards for concurrent access.
	NumShards int

	// TTL caps the lifetime of every entry regardless of its own expiration.
	// Sliding windows longer than TTL fail ValidateSettings; the store logs a
	// warning for absolute deadlines beyond it.
	TTL time.Duration

	// EvictionPercentage is the share of entries evicted when the store is full.
	EvictionPercentage int

	// EvictionInterval sets how often expired entries are swept. Zero uses the
	// store default.
	EvictionInterval time.Duration

	// DefaultSliding is the sliding expiration of common key markers and of
	// content types without explicit settings.
	DefaultSliding time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		TTL:                time.Hour,
		EvictionPercentage: 10,
		EvictionInterval:   0,
		DefaultSliding:     10 * time.Minute,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.TTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
		validation.Field(&c.DefaultSliding, validation.Required, validation.Min(time.Duration(1)), validation.Max(c.TTL)),
	)
	if err != nil {
		return fmt.Errorf("cache: invalid config: %w", err)
	}
	return nil
}

// DefaultSettings returns the settings applied to content types that have no
// explicit cache settings.
func (c Config) DefaultSettings() Settings {
	return Settings{Expiration: SlidingExpiration(c.DefaultSliding)}
}

// ValidateSettings checks s and rejects sliding windows longer than TTL.
// Absolute deadlines depend on the write time and are reported by the store.
func (c Config) ValidateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.Expiration.Kind == ExpireSliding && s.Expiration.Window > c.TTL {
		return fmt.Errorf("%w: %s over %s", ErrExceedsTTL, s.Expiration, c.TTL)
	}
	return nil
}
