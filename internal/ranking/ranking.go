// Package ranking re-orders cached search results.
package ranking

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"bookbot/internal/book"
)

// Catalog dates are free-form; these are the shapes seen in practice.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"2006",
	time.RFC3339,
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
}

// ByRating sorts books by descending average rating. A missing rating counts
// as 0; ties keep their original relative order.
func ByRating(books []book.Book) {
	slices.SortStableFunc(books, func(a, b book.Book) int {
		return cmp.Compare(b.Rating(), a.Rating())
	})
}

// ByDate sorts books by descending publication date using CompareDates.
func ByDate(books []book.Book) {
	slices.SortStableFunc(books, func(a, b book.Book) int {
		return CompareDates(b.PublishedDate, a.PublishedDate)
	})
}

// CompareDates orders two publication dates ascending. A missing date is less
// than any present one. When both parse they compare as calendar dates,
// otherwise as ordinal strings.
func CompareDates(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	case b == "":
		return 1
	}

	da, okA := ParseDate(a)
	db, okB := ParseDate(b)
	if okA && okB {
		return da.Compare(db)
	}
	return strings.Compare(a, b)
}

// ParseDate is a best-effort calendar date parse.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
