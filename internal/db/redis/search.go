package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/soycharroup/memoryreel/internal/db"
)

// SearchContent runs a filtered, paginated content lookup via FT.SEARCH.
func (s *Store) SearchContent(ctx context.Context, q *db.ContentQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	queryStr := buildContentQuery(q)

	args := []string{
		q.IndexName, queryStr,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseContentResult(raw)
}

// buildContentQuery assembles the FT.SEARCH query string from structured filters.
func buildContentQuery(q *db.ContentQuery) string {
	var parts []string

	if q.Text != "" {
		// OR-join the terms: a record tagged with any of them matches.
		// Requiring every term as a tag zeroes out recall on multi-word
		// queries like "beach sunset family".
		terms := strings.Fields(q.Text)
		for i, term := range terms {
			terms[i] = escapeQuery(term)
		}
		parts = append(parts, fmt.Sprintf("@tags:(%s)", strings.Join(terms, "|")))
	}
	if q.ContentType != "" {
		parts = append(parts, fmt.Sprintf("@content_type:{%s}", escapeTag(q.ContentType)))
	}
	if len(q.People) > 0 {
		escaped := make([]string, len(q.People))
		for i, p := range q.People {
			escaped[i] = escapeTag(p)
		}
		parts = append(parts, fmt.Sprintf("@people:{%s}", strings.Join(escaped, "|")))
	}
	if q.DateFromUnix != nil || q.DateToUnix != nil {
		from, to := "-inf", "+inf"
		if q.DateFromUnix != nil {
			from = strconv.FormatInt(*q.DateFromUnix, 10)
		}
		if q.DateToUnix != nil {
			to = strconv.FormatInt(*q.DateToUnix, 10)
		}
		parts = append(parts, fmt.Sprintf("@captured_at:[%s %s]", from, to))
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// parseContentResult decodes the RESP2 FT.SEARCH reply.
// 2-stride: [total, key1, fields1, key2, fields2, ...]
func parseContentResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{Total: 0}, nil
	}

	docs := make([]db.Document, 0, len(raw)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		docs = append(docs, db.Document{
			ID:     key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Docs: docs}, nil
}

// parseFieldPairs decodes an alternating [name, value, ...] field array.
func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	out := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		name, err := fields[i].ToString()
		if err != nil {
			continue
		}
		value, err := fields[i+1].ToString()
		if err != nil {
			continue
		}
		out[name] = value
	}
	return out
}

// escapeQuery escapes RediSearch special characters in full-text query input.
func escapeQuery(q string) string {
	replacer := strings.NewReplacer(
		",", "\\,", ".", "\\.", "<", "\\<", ">", "\\>", "{", "\\{", "}", "\\}",
		"[", "\\[", "]", "\\]", "\"", "\\\"", "'", "\\'", ":", "\\:", ";", "\\;",
		"!", "\\!", "@", "\\@", "#", "\\#", "$", "\\$", "%", "\\%", "^", "\\^",
		"&", "\\&", "*", "\\*", "(", "\\(", ")", "\\)", "-", "\\-", "+", "\\+",
		"=", "\\=", "~", "\\~", "/", "\\/",
	)
	return replacer.Replace(q)
}

// escapeTag escapes separators inside TAG field values.
func escapeTag(v string) string {
	replacer := strings.NewReplacer(" ", "\\ ", ",", "\\,", "|", "\\|")
	return replacer.Replace(v)
}
