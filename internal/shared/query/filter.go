// Package query holds the paging and sorting request shared by list
// operations, plus the page result they return.
package query

import (
	"fmt"
	"strings"

	"github.com/candlepin/candlepin-sub005/internal/shared/errors"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

// ParseSortOrder accepts asc/desc in any case. Empty defaults to ascending.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC", "ASCENDING":
		return SortAsc, nil
	case "DESC", "DESCENDING":
		return SortDesc, nil
	default:
		return "", errors.NewValidationError("invalid sort order", s)
	}
}

// PageRequest is the page number, page size and sort requested by a caller.
// A nil *PageRequest means the caller wants every row.
type PageRequest struct {
	Page    int
	PerPage int
	SortBy  string
	Order   SortOrder
}

// NewPageRequest normalizes page and size: page starts at 1, size defaults
// to DefaultPageSize and is capped at MaxPageSize.
func NewPageRequest(page, perPage int, sortBy string, order SortOrder) *PageRequest {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}
	if order == "" {
		order = SortAsc
	}
	return &PageRequest{
		Page:    page,
		PerPage: perPage,
		SortBy:  sortBy,
		Order:   order,
	}
}

func (p *PageRequest) Offset() int {
	if p == nil || p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

func (p *PageRequest) Limit() int {
	if p == nil {
		return -1
	}
	return p.PerPage
}

// IsPaging reports whether a page window was requested.
func (p *PageRequest) IsPaging() bool {
	return p != nil && p.PerPage > 0
}

// OrderClause resolves SortBy through columns, a whitelist from API field
// name to column. An empty SortBy yields defaultColumn ascending. Unknown
// fields are rejected.
func (p *PageRequest) OrderClause(columns map[string]string, defaultColumn string) (string, error) {
	if p == nil || p.SortBy == "" {
		return defaultColumn + " ASC", nil
	}
	column, ok := columns[p.SortBy]
	if !ok {
		return "", errors.NewValidationError("invalid sort field", p.SortBy)
	}
	order := SortAsc
	if p.Order == SortDesc {
		order = SortDesc
	}
	// Secondary key keeps page boundaries stable when the sort column has ties.
	if column == defaultColumn {
		return fmt.Sprintf("%s %s", column, order), nil
	}
	return fmt.Sprintf("%s %s, %s ASC", column, order, defaultColumn), nil
}

// Page is one window of a result set together with the total row count.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// TotalPages returns the number of pages, at least 1.
func (p Page[T]) TotalPages() int {
	if p.Total == 0 || p.PerPage == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// ApplyPaging windows an in-memory result. The items must already be in the
// requested order. Total is the length of items, so it is exact.
func ApplyPaging[T any](items []T, req *PageRequest) Page[T] {
	total := int64(len(items))
	if !req.IsPaging() {
		return Page[T]{Items: items, Total: total, Page: 1, PerPage: len(items)}
	}

	start := req.Offset()
	if start > len(items) {
		start = len(items)
	}
	end := start + req.PerPage
	if end > len(items) {
		end = len(items)
	}

	window := make([]T, end-start)
	copy(window, items[start:end])
	return Page[T]{Items: window, Total: total, Page: req.Page, PerPage: req.PerPage}
}
