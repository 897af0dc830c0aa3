package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
)

// Ranking terms.
const (
	// recencyHalfLifeDays halves the recency term every ~30 days of age.
	recencyHalfLifeDays = 30.0

	completenessLocation = 0.10
	completenessDevice   = 0.05
	completenessFaces    = 0.10
	completenessScene    = 0.10
	sceneConfidenceMin   = 0.8
)

// Rank scores and orders content records by AI-tag relevance, recency decay,
// and metadata completeness. Pure and deterministic: identical inputs yield
// identical ordering (stable sort, descending score).
func Rank(records []content.Record, interp *domain.Interpretation, now time.Time) []result.Item {
	items := make([]result.Item, len(records))
	for i, rec := range records {
		items[i] = result.NewItem(rec, score(rec, interp, now))
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score() > items[j].Score()
	})

	return items
}

func score(rec content.Record, interp *domain.Interpretation, now time.Time) float64 {
	return relevanceTerm(rec, interp) + recencyTerm(rec, now) + completenessTerm(rec)
}

// relevanceTerm sums, over the interpretation entities, the best matching
// tag's confidence weighted by the entity confidence.
func relevanceTerm(rec content.Record, interp *domain.Interpretation) float64 {
	if interp == nil || len(interp.Entities) == 0 {
		return 0
	}

	var sum float64
	for _, e := range interp.Entities {
		if best, ok := bestMatchingTag(rec.AITags(), e.Name); ok {
			sum += best * e.Confidence
		}
	}
	return sum
}

// bestMatchingTag finds the highest-confidence tag matching the entity name.
// A tag matches on case-insensitive equality or substring containment.
func bestMatchingTag(tags []domain.Tag, entity string) (float64, bool) {
	entity = strings.ToLower(entity)

	best, found := 0.0, false
	for _, t := range tags {
		name := strings.ToLower(t.Name)
		if name == entity || strings.Contains(name, entity) || strings.Contains(entity, name) {
			found = true
			if t.Confidence > best {
				best = t.Confidence
			}
		}
	}
	return best, found
}

// recencyTerm decays exponentially with capture age.
func recencyTerm(rec content.Record, now time.Time) float64 {
	ageDays := now.Sub(rec.CapturedAt()).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp2(-ageDays / recencyHalfLifeDays)
}

// completenessTerm grants a bounded bonus for present metadata.
func completenessTerm(rec content.Record) float64 {
	var bonus float64
	if rec.Location() != "" {
		bonus += completenessLocation
	}
	if rec.DeviceInfo() != "" {
		bonus += completenessDevice
	}
	if len(rec.Faces()) > 0 {
		bonus += completenessFaces
	}
	if s := rec.Scene(); s != nil && s.Confidence >= sceneConfidenceMin {
		bonus += completenessScene
	}
	return bonus
}
