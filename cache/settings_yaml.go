package cache

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"
)

// settingsDocument is the YAML layout read by LoadSettingsYAML:
//
//	default:
//	  expiration:
//	    sliding: 10m
//	types:
//	  article_page:
//	    key_dependencies: [navigation]
//	    file_dependencies: [/etc/site/menu.xml]
//	    expiration:
//	      absolute: 2030-01-01T00:00:00Z
//	  search_page:
//	    cancel_caching: true
type settingsDocument struct {
	Default *settingsEntry           `yaml:"default"`
	Types   map[string]settingsEntry `yaml:"types"`
}

type settingsEntry struct {
	CancelCaching    bool             `yaml:"cancel_caching"`
	FileDependencies []string         `yaml:"file_dependencies"`
	KeyDependencies  []string         `yaml:"key_dependencies"`
	Expiration       *expirationEntry `yaml:"expiration"`
}

type expirationEntry struct {
	Sliding  time.Duration `yaml:"sliding"`
	Absolute *time.Time    `yaml:"absolute"`
}

func (e settingsEntry) toSettings(fallback Expiration) (Settings, error) {
	s := Settings{
		CancelCaching:    e.CancelCaching,
		FileDependencies: e.FileDependencies,
		KeyDependencies:  e.KeyDependencies,
		Expiration:       fallback,
	}
	if e.Expiration != nil {
		switch {
		case e.Expiration.Absolute != nil && e.Expiration.Sliding != 0:
			return Settings{}, errors.New("expiration must be either sliding or absolute")
		case e.Expiration.Absolute != nil:
			s.Expiration = AbsoluteExpiration(*e.Expiration.Absolute)
		case e.Expiration.Sliding != 0:
			s.Expiration = SlidingExpiration(e.Expiration.Sliding)
		default:
			s.Expiration = NoExpiration()
		}
	}
	return s, s.Validate()
}

// LoadSettingsYAML reads per content type cache settings. Types are keyed by
// the snake_case name of their descriptor. fallback is used when the document
// has no default section.
func LoadSettingsYAML(r io.Reader, fallback Settings) (*SettingsByType, error) {
	var doc settingsDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("cache: decode settings: %w", err)
	}

	def := fallback
	if doc.Default != nil {
		s, err := doc.Default.toSettings(fallback.Expiration)
		if err != nil {
			return nil, fmt.Errorf("cache: default settings: %w", err)
		}
		def = s
	}

	provider := NewSettingsByType(def)
	for name, entry := range doc.Types {
		s, err := entry.toSettings(def.Expiration)
		if err != nil {
			return nil, fmt.Errorf("cache: settings for %s: %w", name, err)
		}
		if err := provider.SetNamed(name, s); err != nil {
			return nil, fmt.Errorf("cache: settings for %s: %w", name, err)
		}
	}

	return provider, nil
}
