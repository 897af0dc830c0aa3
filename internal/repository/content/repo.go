// Package content implements the content lookup over the Redis search index.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/soycharroup/memoryreel/internal/db"
	domcontent "github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
)

// store is the consumer interface for content lookups (ISP).
type store interface {
	SearchContent(ctx context.Context, q *db.ContentQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.ContentFinder against the media index.
type Repo struct {
	store     store
	keyPrefix string
	indexName string
}

// New creates a content repository. indexName is the FT index over media
// record hashes; keyPrefix is stripped from document keys to yield content ids.
func New(s store, keyPrefix, indexName string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix, indexName: indexName}
}

// Find runs a filtered, paginated lookup and maps stored documents to
// domain content records.
func (r *Repo) Find(
	ctx context.Context, text string, filters filter.Set, page, pageSize int,
) ([]domcontent.Record, int, error) {
	q := &db.ContentQuery{
		IndexName:   r.indexName,
		Text:        text,
		ContentType: filters.ContentType(),
		People:      filters.People(),
		Offset:      (page - 1) * pageSize,
		Limit:       pageSize,
	}
	if from := filters.DateFrom(); from != nil {
		unix := from.Unix()
		q.DateFromUnix = &unix
	}
	if to := filters.DateTo(); to != nil {
		unix := to.Unix()
		q.DateToUnix = &unix
	}

	res, err := r.store.SearchContent(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("search content: %w", err)
	}

	records := make([]domcontent.Record, 0, len(res.Docs))
	for _, doc := range res.Docs {
		rec, err := recordFromDoc(doc, r.keyPrefix)
		if err != nil {
			// Skip malformed stored records rather than failing the page.
			continue
		}
		records = append(records, rec)
	}

	return records, res.Total, nil
}

func contentID(key, keyPrefix string) string {
	return strings.TrimPrefix(key, keyPrefix+"content:")
}
