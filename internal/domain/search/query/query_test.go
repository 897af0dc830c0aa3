package query

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
)

func TestNew_TextOnly(t *testing.T) {
	q, err := New("  beach sunset  ", filter.Set{}, 0, 0, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if q.Text() != "beach sunset" {
		t.Errorf("expected trimmed text, got %q", q.Text())
	}
	if q.Page() != 1 {
		t.Errorf("expected default page 1, got %d", q.Page())
	}
	if q.PageSize() != DefaultPageSize {
		t.Errorf("expected default page size %d, got %d", DefaultPageSize, q.PageSize())
	}
}

func TestNew_FiltersOnly(t *testing.T) {
	f, err := filter.New(nil, nil, "photo", nil)
	if err != nil {
		t.Fatalf("filter.New failed: %v", err)
	}
	if _, err := New("", f, 1, 20, ""); err != nil {
		t.Errorf("filter-only query should be valid, got %v", err)
	}
}

func TestNew_EmptyRejected(t *testing.T) {
	_, err := New("   ", filter.Set{}, 1, 20, "")
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestNew_TextTooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxTextLength+1), filter.Set{}, 1, 20, "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for oversized text, got %v", err)
	}
}

func TestNew_PaginationBounds(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		wantErr  bool
	}{
		{"negative page", -1, 20, true},
		{"zero page defaults", 0, 20, false},
		{"page size above max", 1, MaxPageSize + 1, true},
		{"page size at max", 1, MaxPageSize, false},
		{"negative page size", 1, -5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("dogs", filter.Set{}, tt.page, tt.pageSize, "")
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	q, err := New("  Beach   SUNSET\tphotos ", filter.Set{}, 1, 20, "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := q.Normalized(); got != "beach sunset photos" {
		t.Errorf("expected normalized form %q, got %q", "beach sunset photos", got)
	}
}

func TestNormalized_EquivalentQueriesCollide(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	f, _ := filter.New(&from, nil, "photo", []string{"Bob", "alice"})
	g, _ := filter.New(&from, nil, "photo", []string{"ALICE ", "bob"})

	q1, _ := New("Beach  Sunset", f, 1, 20, "")
	q2, _ := New("beach sunset", g, 1, 20, "")

	if q1.Normalized() != q2.Normalized() {
		t.Errorf("normalized text differs: %q vs %q", q1.Normalized(), q2.Normalized())
	}
	if q1.Filters().Canonical() != q2.Filters().Canonical() {
		t.Errorf("canonical filters differ: %q vs %q",
			q1.Filters().Canonical(), q2.Filters().Canonical())
	}
}
