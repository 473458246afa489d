package base

import (
	"context"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// ListParams narrows and pages a List query. Zero values fall back to
// defaults; Limit is clamped server-side regardless of caller input.
type ListParams struct {
	Page     int
	Limit    int
	OrderBy  string // must be one of the entity's columns; default created_at
	OrderDir string // "ASC" or "DESC"; default ASC
	Where    squirrel.Sqlizer
}

// Page is the pagination envelope returned by List.
type Page[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// normalize applies defaults and clamps values against the entity's columns.
func (p *ListParams) normalize(columns []string) {
	if p.Page < 1 {
		p.Page = defaultPage
	}
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}

	if !slices.Contains(columns, p.OrderBy) {
		p.OrderBy = "created_at"
	}

	switch strings.ToUpper(p.OrderDir) {
	case "ASC", "DESC":
		p.OrderDir = strings.ToUpper(p.OrderDir)
	default:
		p.OrderDir = "ASC"
	}
}

// List returns one page of live rows matching the optional predicate,
// together with the total count across all pages.
// TotalPages = ceil(Total/Limit); zero matches produce zero pages.
func (b *Base[T]) List(ctx context.Context, params ListParams) (*Page[T], error) {
	params.normalize(b.meta.Columns)

	total, err := b.Count(ctx, params.Where)
	if err != nil {
		return nil, err
	}

	qb := b.SelectBuilder().
		OrderBy(params.OrderBy + " " + params.OrderDir).
		Limit(uint64(params.Limit)).
		Offset(uint64((params.Page - 1) * params.Limit))
	if params.Where != nil {
		qb = qb.Where(params.Where)
	}

	items, err := b.Select(ctx, qb)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: (total + params.Limit - 1) / params.Limit,
	}, nil
}
