package models

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// EntryFilter narrows an entry listing. Zero-valued fields do not filter.
type EntryFilter struct {
	Status   string
	Language string
	Search   string
	From     *time.Time
	To       *time.Time
}

// SearchFields returns the six text fields the search term is matched
// against, as dotted document paths.
func SearchFields() []string {
	return []string{"word.pt", "word.en", "quote.pt", "quote.en", "reflection.pt", "reflection.en"}
}

// Matches reports whether e satisfies every condition in f. Search is a
// case-insensitive substring match on any of SearchFields.
func (f EntryFilter) Matches(e *Entry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Language != "" && e.Language != f.Language {
		return false
	}
	if f.From != nil && e.PublishDate.Before(*f.From) {
		return false
	}
	if f.To != nil && e.PublishDate.After(*f.To) {
		return false
	}
	if f.Search == "" {
		return true
	}
	needle := strings.ToLower(f.Search)
	for _, text := range []string{e.Word.PT, e.Word.EN, e.Quote.PT, e.Quote.EN, e.Reflection.PT, e.Reflection.EN} {
		if strings.Contains(strings.ToLower(text), needle) {
			return true
		}
	}
	return false
}

// Newer orders entries by publish date descending, then by id ascending.
func Newer(a, b *Entry) bool {
	if !a.PublishDate.Equal(b.PublishDate) {
		return a.PublishDate.After(b.PublishDate)
	}
	return a.ID.Hex() < b.ID.Hex()
}

// Pagination is a 1-indexed page request.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize replaces non-positive values with the defaults.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// Skip returns the offset of the page's first item, saturating at
// math.MaxInt64 so that far-out pages are simply empty.
func (p Pagination) Skip() int64 {
	if p.Page < 2 || p.Limit < 1 {
		return 0
	}
	pages, limit := int64(p.Page-1), int64(p.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return pages * limit
}

// TotalPages returns how many pages of p.Limit items hold total items.
func (p Pagination) TotalPages(total int64) int64 {
	if p.Limit < 1 || total <= 0 {
		return 0
	}
	return (total-1)/int64(p.Limit) + 1
}
