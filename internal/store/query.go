// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// SortMode selects the record ordering for searches.
type SortMode string

const (
	// SortImportance orders by score descending, date descending as
	// tie-break. This is the default.
	SortImportance SortMode = "importance"
	// SortDate orders by date descending, score descending as tie-break.
	SortDate SortMode = "date"
)

// SearchOptions holds the optional, AND-combined filters plus sort and
// pagination parameters for a record query. Out-of-range paging values are
// clamped, never rejected.
type SearchOptions struct {
	// Query is a case-insensitive substring matched against title,
	// translated title, abstract, and authors (OR semantics).
	Query string

	// Category filters by exact category. Empty or "all" disables it.
	Category types.Category

	// Provider filters by exact provider name.
	Provider string

	// DateFrom and DateTo bound the date string lexically (inclusive).
	DateFrom string
	DateTo   string

	// Sort selects the ordering; anything other than SortDate falls back
	// to SortImportance.
	Sort SortMode

	// Page is 1-indexed; values below 1 are clamped to 1.
	Page int

	// PageSize is clamped to [1,200]; zero uses the store default.
	PageSize int
}

// SearchPage is one page of matching records. Total counts all matches
// regardless of page.
type SearchPage struct {
	Items    []types.Record `json:"items"`
	Total    int            `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
	HasMore  bool           `json:"has_more"`
}

// Search answers a filtered, sorted, paginated record query.
func (s *Store) Search(ctx context.Context, opts SearchOptions) (SearchPage, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	size := opts.PageSize
	switch {
	case size == 0:
		size = s.defaultPageSize
	case size < 0:
		size = 1
	case size > maxPageSize:
		size = maxPageSize
	}
	offset := (page - 1) * size

	pred := searchPredicate(opts)

	countSQL, countArgs, err := sq.Select("count(*)").From("records").Where(pred).ToSql()
	if err != nil {
		return SearchPage{}, fmt.Errorf("building count query: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return SearchPage{}, fmt.Errorf("counting matches: %w", err)
	}

	orderBy := []string{"importance DESC", "date DESC"}
	if opts.Sort == SortDate {
		orderBy = []string{"date DESC", "importance DESC"}
	}

	dataSQL, dataArgs, err := sq.
		Select("url", "title", "title_zh", "authors", "source", "date", "abstract",
			"category", "provider", "importance", "importance_level", "fetched_at").
		From("records").
		Where(pred).
		OrderBy(orderBy...).
		Limit(uint64(size)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return SearchPage{}, fmt.Errorf("building search query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return SearchPage{}, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	items, err := scanRecords(rows)
	if err != nil {
		return SearchPage{}, err
	}

	return SearchPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: size,
		HasMore:  offset+size < total,
	}, nil
}

// searchPredicate builds the AND-combined filter conjunction shared by the
// count and data queries.
func searchPredicate(opts SearchOptions) sq.And {
	pred := sq.And{}

	if opts.Category != "" && opts.Category != types.CategoryAll {
		pred = append(pred, sq.Eq{"category": string(opts.Category)})
	}
	if opts.Provider != "" {
		pred = append(pred, sq.Eq{"provider": opts.Provider})
	}
	if opts.Query != "" {
		like := "%" + opts.Query + "%"
		pred = append(pred, sq.Or{
			sq.Like{"title": like},
			sq.Like{"title_zh": like},
			sq.Like{"abstract": like},
			sq.Like{"authors": like},
		})
	}
	if opts.DateFrom != "" {
		pred = append(pred, sq.GtOrEq{"date": opts.DateFrom})
	}
	if opts.DateTo != "" {
		pred = append(pred, sq.LtOrEq{"date": opts.DateTo})
	}

	if len(pred) == 0 {
		// squirrel renders an empty And as "(1=1)"; keep it explicit.
		pred = append(pred, sq.Expr("1=1"))
	}
	return pred
}
