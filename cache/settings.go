package cache

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-typed-content/internal/naming"
)

// Settings is the caching policy applied when a content type is resolved.
type Settings struct {
	// CancelCaching skips writing and removes the item's common key marker.
	CancelCaching bool

	// FileDependencies are extra file tokens entries depend on.
	FileDependencies []string

	// KeyDependencies are extra cache keys entries depend on.
	KeyDependencies []string

	Expiration Expiration
}

// Validate checks the settings.
func (s Settings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.FileDependencies, validation.Each(validation.Required)),
		validation.Field(&s.KeyDependencies, validation.Each(validation.Required)),
		validation.Field(&s.Expiration),
	)
}

// Validate checks the expiration policy is complete for its kind.
func (e Expiration) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Kind, validation.In(ExpireNever, ExpireAbsolute, ExpireSliding)),
		validation.Field(&e.Deadline, validation.When(e.Kind == ExpireAbsolute, validation.Required)),
		validation.Field(&e.Window, validation.When(e.Kind == ExpireSliding, validation.Required, validation.Min(time.Duration(1)))),
	)
}

// Clone returns a copy that does not share dependency slices.
func (s Settings) Clone() Settings {
	s.FileDependencies = slices.Clone(s.FileDependencies)
	s.KeyDependencies = slices.Clone(s.KeyDependencies)
	return s
}

// SettingsProvider returns the cache settings for a content type descriptor.
type SettingsProvider interface {
	CacheSettings(desc reflect.Type) Settings
}

// SettingsProviderFunc adapts a function to SettingsProvider.
type SettingsProviderFunc func(desc reflect.Type) Settings

// CacheSettings calls f(desc).
func (f SettingsProviderFunc) CacheSettings(desc reflect.Type) Settings {
	return f(desc)
}

// StaticSettings returns a provider that applies s to every content type.
func StaticSettings(s Settings) SettingsProvider {
	return SettingsProviderFunc(func(reflect.Type) Settings {
		return s.Clone()
	})
}

// SettingsByType resolves settings per descriptor, falling back to settings
// registered under the descriptor's snake_case name and then to a default.
type SettingsByType struct {
	mu     sync.RWMutex
	def    Settings
	byType map[reflect.Type]Settings
	byName map[string]Settings
}

// NewSettingsByType creates a provider returning def for unknown types.
func NewSettingsByType(def Settings) *SettingsByType {
	return &SettingsByType{
		def:    def,
		byType: make(map[reflect.Type]Settings),
		byName: make(map[string]Settings),
	}
}

// Set registers settings for desc.
func (p *SettingsByType) Set(desc reflect.Type, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byType[desc] = s
	return nil
}

// SetNamed registers settings for the content type with the given snake_case name.
func (p *SettingsByType) SetNamed(name string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byName[name] = s
	return nil
}

// Default returns the fallback settings.
func (p *SettingsByType) Default() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.def.Clone()
}

// ValidateWith runs check over the default and every registered settings.
func (p *SettingsByType) ValidateWith(check func(Settings) error) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err := check(p.def); err != nil {
		return fmt.Errorf("default settings: %w", err)
	}
	for desc, s := range p.byType {
		if err := check(s); err != nil {
			return fmt.Errorf("settings for %s: %w", naming.TypeName(desc), err)
		}
	}
	for name, s := range p.byName {
		if err := check(s); err != nil {
			return fmt.Errorf("settings for %s: %w", name, err)
		}
	}
	return nil
}

// CacheSettings implements SettingsProvider.
func (p *SettingsByType) CacheSettings(desc reflect.Type) Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if s, ok := p.byType[desc]; ok {
		return s.Clone()
	}
	if s, ok := p.byName[naming.TypeName(desc)]; ok {
		return s.Clone()
	}
	return p.def.Clone()
}
