// Package db defines the storage contract backing the cache, the content
// lookup, and the analytics stream.
package db

import (
	"context"
	"time"
)

// Document is a raw stored media record: redis key plus hash fields.
type Document struct {
	ID     string
	Fields map[string]string
}

// ContentQuery is a filtered, paginated content lookup.
type ContentQuery struct {
	IndexName    string
	Text         string // optional full-text over the tags field
	ContentType  string
	People       []string
	DateFromUnix *int64
	DateToUnix   *int64
	Offset       int
	Limit        int
}

// SearchResult is one page of matching documents with the total match count.
type SearchResult struct {
	Total int
	Docs  []Document
}

// Store is the full storage contract.
type Store interface {
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	// WaitForReady polls Ping until the store responds or the timeout expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error
	// Close shuts down the client.
	Close()

	// Get retrieves a value by key. Returns ErrKeyNotFound on absence.
	Get(ctx context.Context, key string) ([]byte, error)
	// SetWithTTL stores a value with an expiration.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SearchContent runs a filtered, paginated lookup via FT.SEARCH.
	SearchContent(ctx context.Context, q *ContentQuery) (*SearchResult, error)

	// StreamAdd appends an entry to a stream (XADD).
	StreamAdd(ctx context.Context, stream string, fields map[string]string) error
}
