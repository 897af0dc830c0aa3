// Package query defines the validated search query value object.
package query

import (
	"fmt"
	"strings"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
)

// Search parameter limits.
const (
	// MaxTextLength is the maximum allowed query text length.
	MaxTextLength = 1024
	// DefaultPageSize is applied when the caller passes no page size.
	DefaultPageSize = 20
	// MaxPageSize bounds the pagination window.
	MaxPageSize = 100
)

// Query is a validated, immutable search query.
type Query struct {
	text     string
	filters  filter.Set
	page     int
	pageSize int
	prefer   string
}

// New validates and normalizes search parameters.
// Defaults: page=1, pageSize=20. Validation happens once at ingress; the
// query is immutable thereafter.
func New(text string, filters filter.Set, page, pageSize int, preferred string) (Query, error) {
	text = strings.TrimSpace(text)
	if text == "" && filters.IsEmpty() {
		return Query{}, fmt.Errorf("%w: query text or filters required", domain.ErrValidation)
	}
	if len(text) > MaxTextLength {
		return Query{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrValidation, MaxTextLength)
	}
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return Query{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return Query{}, fmt.Errorf("%w: page_size must be between 1 and %d", domain.ErrValidation, MaxPageSize)
	}

	return Query{text: text, filters: filters, page: page, pageSize: pageSize, prefer: preferred}, nil
}

// Text returns the free-text query, trimmed.
func (q *Query) Text() string { return q.text }

// Filters returns the explicit structured filters.
func (q *Query) Filters() filter.Set { return q.filters }

// Page returns the 1-based page number.
func (q *Query) Page() int { return q.page }

// PageSize returns the page size.
func (q *Query) PageSize() int { return q.pageSize }

// Preferred returns the preferred interpretation provider kind, empty when none.
func (q *Query) Preferred() string { return q.prefer }

// Normalized returns the query text in canonical form for cache keying:
// lowercased with collapsed inner whitespace.
func (q *Query) Normalized() string {
	return strings.Join(strings.Fields(strings.ToLower(q.text)), " ")
}
