// Package filter defines the structured search filter set and its canonical form.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// MaxPeople is the maximum number of tagged people per filter set.
const MaxPeople = 32

// Set is a structured search filter: date range, content type, tagged people.
// Immutable after construction.
type Set struct {
	dateFrom    *time.Time
	dateTo      *time.Time
	contentType string
	people      []string
}

// New validates and creates a filter Set.
// People are deduplicated and stored sorted so that two sets built from the
// same values in any order compare and canonicalize identically.
func New(dateFrom, dateTo *time.Time, contentType string, people []string) (Set, error) {
	if dateFrom != nil && dateTo != nil && dateTo.Before(*dateFrom) {
		return Set{}, fmt.Errorf("%w: date_to before date_from", domain.ErrValidation)
	}
	switch contentType {
	case "", "photo", "video":
	default:
		return Set{}, fmt.Errorf("%w: unknown content type %q", domain.ErrValidation, contentType)
	}
	if len(people) > MaxPeople {
		return Set{}, fmt.Errorf("%w: too many people (max %d)", domain.ErrValidation, MaxPeople)
	}

	seen := make(map[string]struct{}, len(people))
	norm := make([]string, 0, len(people))
	for _, p := range people {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		norm = append(norm, p)
	}
	sort.Strings(norm)

	return Set{dateFrom: dateFrom, dateTo: dateTo, contentType: contentType, people: norm}, nil
}

// DateFrom returns the inclusive lower capture-time bound.
func (s Set) DateFrom() *time.Time { return s.dateFrom }

// DateTo returns the inclusive upper capture-time bound.
func (s Set) DateTo() *time.Time { return s.dateTo }

// ContentType returns the media type filter, empty when unset.
func (s Set) ContentType() string { return s.contentType }

// People returns the tagged people, sorted.
func (s Set) People() []string { return s.people }

// IsEmpty reports whether the set has no conditions.
func (s Set) IsEmpty() bool {
	return s.dateFrom == nil && s.dateTo == nil && s.contentType == "" && len(s.people) == 0
}

// Merge combines provider-inferred filters into the set. Explicit fields win:
// an inferred value is taken only where the explicit set has none.
func (s Set) Merge(inferred domain.InferredFilters) Set {
	out := s
	if out.dateFrom == nil && inferred.DateFrom != nil {
		t := *inferred.DateFrom
		out.dateFrom = &t
	}
	if out.dateTo == nil && inferred.DateTo != nil {
		t := *inferred.DateTo
		out.dateTo = &t
	}
	if out.contentType == "" {
		switch inferred.ContentType {
		case "photo", "video":
			out.contentType = inferred.ContentType
		}
	}
	if len(out.people) == 0 && len(inferred.People) > 0 {
		merged, err := New(out.dateFrom, out.dateTo, out.contentType, inferred.People)
		if err == nil {
			out.people = merged.people
		}
	}
	return out
}

// Canonical returns a deterministic string form of the set, independent of
// how the caller ordered its inputs. Used for cache key derivation.
func (s Set) Canonical() string {
	var b strings.Builder
	b.WriteString("from=")
	if s.dateFrom != nil {
		b.WriteString(s.dateFrom.UTC().Format(time.RFC3339))
	}
	b.WriteString("|to=")
	if s.dateTo != nil {
		b.WriteString(s.dateTo.UTC().Format(time.RFC3339))
	}
	b.WriteString("|type=")
	b.WriteString(s.contentType)
	b.WriteString("|people=")
	b.WriteString(strings.Join(s.people, ","))
	return b.String()
}
