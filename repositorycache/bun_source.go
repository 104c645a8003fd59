package repositorycache

import (
	"context"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-typed-content/content"
	"github.com/uptrace/bun"
)

// BunSource reads pages from the pages table of a bun database.
type BunSource struct {
	db bun.IDB
}

var _ Source = (*BunSource)(nil)

// NewBunSource creates a Source over db. db may be a *bun.DB or a bun.Tx.
func NewBunSource(db bun.IDB) *BunSource {
	return &BunSource{db: db}
}

// Get returns the first page matching criteria. It returns sql.ErrNoRows when
// nothing matches.
func (s *BunSource) Get(ctx context.Context, criteria ...repository.SelectCriteria) (*content.Page, error) {
	page := new(content.Page)
	q := s.db.NewSelect().Model(page)
	for _, c := range criteria {
		q = c(q)
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	return page, nil
}

// List returns the pages matching criteria together with the total count
// ignoring limit and offset.
func (s *BunSource) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]*content.Page, int, error) {
	var pages []*content.Page
	q := s.db.NewSelect().Model(&pages)
	for _, c := range criteria {
		q = c(q)
	}
	total, err := q.OrderExpr("?TableAlias.id ASC").ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return pages, total, nil
}
