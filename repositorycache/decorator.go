package repositorycache

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-typed-content/content"
	"github.com/uptrace/bun"
)

// Source loads generic pages. Any go-repository-bun repository of pages
// satisfies it.
type Source interface {
	Get(ctx context.Context, criteria ...repository.SelectCriteria) (*content.Page, error)
	List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*content.Page, int, error)
}

var _ Source = (repository.Repository[*content.Page])(nil)

// Converter turns records into typed views and reads and evicts cached ones.
// *resolver.Resolver implements it.
type Converter interface {
	ConvertToTyped(ctx context.Context, rec content.Record) (content.Record, error)
	Lookup(ctx context.Context, ref content.Reference, languageBranch string) (content.Typed, bool)
	Invalidate(ctx context.Context, ref content.Reference) error
	InvalidateAll(ctx context.Context) error
}

// TypedRepository decorates a page source so that every record it returns
// is the typed view of its content type.
type TypedRepository struct {
	base      Source
	converter Converter
}

// New creates a TypedRepository reading from base.
func New(base Source, converter Converter) *TypedRepository {
	return &TypedRepository{
		base:      base,
		converter: converter,
	}
}

// GetByReference returns the typed view of ref in the given language branch.
// An empty branch selects the master language. Cached views are returned
// without touching the source.
func (r *TypedRepository) GetByReference(ctx context.Context, ref content.Reference, languageBranch string) (content.Record, error) {
	if ref.IsEmpty() {
		return nil, fmt.Errorf("get by reference: %w", content.ErrEmptyReference)
	}
	if ref.WorkID == 0 {
		if typed, ok := r.converter.Lookup(ctx, ref, languageBranch); ok {
			return typed, nil
		}
	}
	return r.Get(ctx, ByReference(ref), ByLanguage(languageBranch))
}

// Get loads a single page and converts it.
func (r *TypedRepository) Get(ctx context.Context, criteria ...repository.SelectCriteria) (content.Record, error) {
	page, err := r.base.Get(ctx, criteria...)
	if err != nil {
		return nil, err
	}
	return r.converter.ConvertToTyped(ctx, page)
}

// List loads pages and converts each of them. The total is passed through
// from the source.
func (r *TypedRepository) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]content.Record, int, error) {
	pages, total, err := r.base.List(ctx, criteria...)
	if err != nil {
		return nil, 0, err
	}

	records := make([]content.Record, 0, len(pages))
	for _, page := range pages {
		rec, err := r.converter.ConvertToTyped(ctx, page)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}
	return records, total, nil
}

// Invalidate evicts every cached view of ref.
func (r *TypedRepository) Invalidate(ctx context.Context, ref content.Reference) error {
	return r.converter.Invalidate(ctx, ref)
}

// InvalidateAll evicts every cached view.
func (r *TypedRepository) InvalidateAll(ctx context.Context) error {
	return r.converter.InvalidateAll(ctx)
}

// ByReference selects the page identified by ref, including its provider and
// work version. An empty provider name matches only default provider pages.
func ByReference(ref content.Reference) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", ref.ID).
			Where("?TableAlias.provider_name = ?", ref.ProviderName).
			Where("?TableAlias.work_id = ?", ref.WorkID)
	}
}

// ByLanguage selects a language branch, or the master language branch when
// languageBranch is empty.
func ByLanguage(languageBranch string) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if languageBranch == "" {
			return q.Where("?TableAlias.is_master_language = ?", true)
		}
		return q.Where("?TableAlias.language_branch = ?", languageBranch)
	}
}

// ByType selects pages of a content type.
func ByType(typeID int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.type_id = ?", typeID)
	}
}
