package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-typed-content/content"
	"github.com/google/uuid"
)

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to load fixture from %s: %v", path, err)
	}

	return data
}

// LoadFixtureJSON loads JSON test data from a fixture file and unmarshals it.
// The path is relative to the test package directory.
func LoadFixtureJSON(t *testing.T, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	if err := json.Unmarshal(data, dest); err != nil {
		t.Fatalf("failed to unmarshal JSON fixture from %s: %v", path, err)
	}
}

// LoadPages loads a JSON array of pages from a fixture file.
func LoadPages(t *testing.T, path string) []*content.Page {
	t.Helper()

	var pages []*content.Page
	LoadFixtureJSON(t, path, &pages)
	return pages
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// PageOption customizes a page built by NewPage.
type PageOption func(*content.Page)

// NewPage builds a published master language page of the given type.
func NewPage(id int64, typeID int, opts ...PageOption) *content.Page {
	page := &content.Page{
		ID:             id,
		GUID:           uuid.New(),
		PageTypeID:     typeID,
		Language:       "en",
		MasterLanguage: true,
		Properties:     map[string]any{},
	}
	for _, opt := range opts {
		opt(page)
	}
	return page
}

// WithLanguage sets the language branch and whether it is the master branch.
func WithLanguage(lang string, master bool) PageOption {
	return func(p *content.Page) {
		p.Language = lang
		p.MasterLanguage = master
	}
}

// WithWorkID marks the page as a draft version.
func WithWorkID(workID int) PageOption {
	return func(p *content.Page) {
		p.WorkPageID = workID
	}
}

// WithProvider sets the provider the page was loaded from.
func WithProvider(name string) PageOption {
	return func(p *content.Page) {
		p.ProviderName = name
	}
}

// WithProperty sets a single property.
func WithProperty(name string, value any) PageOption {
	return func(p *content.Page) {
		if p.Properties == nil {
			p.Properties = map[string]any{}
		}
		p.Properties[name] = value
	}
}
