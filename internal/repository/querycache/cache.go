// Package querycache memoizes complete search responses in the KV store.
package querycache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/db"
	"github.com/soycharroup/memoryreel/internal/domain/search/query"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
)

// DefaultTTL is applied when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// store is the consumer interface for the query cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cache stores search result sets keyed by the canonical query.
// Expiry is TTL-based only; there is no invalidation path and misses are
// never cached.
type Cache struct {
	store     store
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// New creates a query cache.
func New(s store, keyPrefix string, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{store: s, keyPrefix: keyPrefix, ttl: ttl, logger: logger}
}

// Get returns the cached result set for a query, if present and decodable.
// Cache I/O errors degrade to a miss.
func (c *Cache) Get(ctx context.Context, q *query.Query) (result.Set, bool) {
	key := c.key(q)

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("failed to read query cache", zap.String("key", key), zap.Error(err))
		}
		return result.Set{}, false
	}

	set, err := decodeSet(data, q.PageSize())
	if err != nil {
		c.logger.Warn("failed to decode cached result set", zap.String("key", key), zap.Error(err))
		return result.Set{}, false
	}
	return set, true
}

// Set stores a result set under the query's key. Writes are idempotent
// overwrites; last writer wins on identical keys.
func (c *Cache) Set(ctx context.Context, q *query.Query, set result.Set) {
	data, err := encodeSet(set)
	if err != nil {
		c.logger.Warn("failed to encode result set for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, c.key(q), data, c.ttl); err != nil {
		c.logger.Warn("failed to write query cache", zap.Error(err))
	}
}

// key derives a deterministic cache key from the normalized query text, the
// canonical filter form, and the pagination window. Semantically identical
// queries collide regardless of how the caller ordered its inputs.
func (c *Cache) key(q *query.Query) string {
	canonical := fmt.Sprintf("%s|%s|page=%d|size=%d",
		q.Normalized(), q.Filters().Canonical(), q.Page(), q.PageSize())
	h := sha256.Sum256([]byte(canonical))
	return c.keyPrefix + "search_cache:" + hex.EncodeToString(h[:])
}
