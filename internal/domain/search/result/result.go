// Package result defines the ranked search result set.
package result

import "github.com/soycharroup/memoryreel/internal/domain/content"

// Item is a single ranked search hit.
type Item struct {
	record content.Record
	score  float64
}

// NewItem creates a search hit.
func NewItem(record content.Record, score float64) Item {
	return Item{record: record, score: score}
}

// Record returns the content record.
func (i *Item) Record() content.Record { return i.record }

// Score returns the ranking score.
func (i *Item) Score() float64 { return i.score }

// Set is an ordered search result set for one pagination window.
// Constructed fresh per query; cached copies expire by TTL only.
type Set struct {
	items        []Item
	total        int
	page         int
	hasMore      bool
	aggregations map[string]int
}

// NewSet assembles a result set. hasMore is derived from the pagination window.
func NewSet(items []Item, total, page, pageSize int, aggregations map[string]int) Set {
	return Set{
		items:        items,
		total:        total,
		page:         page,
		hasMore:      page*pageSize < total,
		aggregations: aggregations,
	}
}

// Items returns the ordered hits.
func (s *Set) Items() []Item { return s.items }

// Total returns the total matching record count.
func (s *Set) Total() int { return s.total }

// Page returns the 1-based page number.
func (s *Set) Page() int { return s.page }

// HasMore reports whether further pages exist.
func (s *Set) HasMore() bool { return s.hasMore }

// Aggregations returns the aggregation summary (counts per bucket).
func (s *Set) Aggregations() map[string]int { return s.aggregations }
