package content

import (
	"maps"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record is the read-only view the resolver needs from a content record.
type Record interface {
	TypeID() int
	Reference() Reference
	LanguageBranch() string
	WorkID() int
	IsMasterLanguageBranch() bool
	PageData() *Page
}

// Page is the generic content record as loaded from a content store. A row
// is one language branch of one version of an item.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p" msgpack:"-"`

	ID             int64          `bun:"id,pk" json:"id" msgpack:"-"`
	ProviderName   string         `bun:"provider_name,pk" json:"provider_name,omitempty" msgpack:"-"`
	WorkPageID     int            `bun:"work_id,pk" json:"work_id,omitempty" msgpack:"-"`
	GUID           uuid.UUID      `bun:"guid,type:uuid" json:"guid" msgpack:"-"`
	PageTypeID     int            `bun:"type_id" json:"type_id" msgpack:"-"`
	Name           string         `bun:"name" json:"name" msgpack:"-"`
	Language       string         `bun:"language_branch,pk" json:"language_branch" msgpack:"-"`
	MasterLanguage bool           `bun:"is_master_language" json:"is_master_language" msgpack:"-"`
	Properties     map[string]any `bun:"properties,type:jsonb" json:"properties,omitempty" msgpack:"-"`
}

var _ Record = (*Page)(nil)

// TypeID returns the numeric content type identifier.
func (p *Page) TypeID() int { return p.PageTypeID }

// Reference returns the identity of the page, including its work version.
func (p *Page) Reference() Reference {
	return Reference{ID: p.ID, WorkID: int64(p.WorkPageID), ProviderName: p.ProviderName}
}

// LanguageBranch returns the language branch the page was loaded for.
func (p *Page) LanguageBranch() string { return p.Language }

// WorkID returns the draft version id; zero means published.
func (p *Page) WorkID() int { return p.WorkPageID }

// IsMasterLanguageBranch reports whether this is the canonical language variant.
func (p *Page) IsMasterLanguageBranch() bool { return p.MasterLanguage }

// PageData returns the page itself.
func (p *Page) PageData() *Page { return p }

// Property returns a single property value.
func (p *Page) Property(name string) (any, bool) {
	if p.Properties == nil {
		return nil, false
	}
	v, ok := p.Properties[name]
	return v, ok
}

// Clone returns a copy of the page with its own property map.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Properties = maps.Clone(p.Properties)
	return &cp
}
