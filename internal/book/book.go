package book

import (
	"strconv"
	"strings"
)

const (
	untitled      = "Untitled"
	unknownAuthor = "Unknown"
)

// Book is a catalog record. It is never mutated after construction; copies
// share the optional fields by pointer.
type Book struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Authors       string   `json:"authors"`
	Description   string   `json:"description,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	PageCount     *int     `json:"page_count,omitempty"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
}

// New builds a Book from raw catalog fields, applying display defaults.
func New(id, title string, authors []string, description, publishedDate string, rating *float64, pageCount *int, thumbnail string) Book {
	if strings.TrimSpace(title) == "" {
		title = untitled
	}
	display := unknownAuthor
	if len(authors) > 0 {
		display = strings.Join(authors, ", ")
	}
	return Book{
		ID:            id,
		Title:         title,
		Authors:       display,
		Description:   description,
		PublishedDate: publishedDate,
		AverageRating: rating,
		PageCount:     pageCount,
		ThumbnailURL:  secureURL(thumbnail),
	}
}

// Rating returns the average rating, or 0 when the catalog has none.
func (b Book) Rating() float64 {
	if b.AverageRating == nil {
		return 0
	}
	return *b.AverageRating
}

// RatingText formats the rating with one decimal, or fallback when missing.
func (b Book) RatingText(fallback string) string {
	if b.AverageRating == nil {
		return fallback
	}
	return strconv.FormatFloat(*b.AverageRating, 'f', 1, 64)
}

// PagesText formats the page count, or fallback when missing.
func (b Book) PagesText(fallback string) string {
	if b.PageCount == nil {
		return fallback
	}
	return strconv.Itoa(*b.PageCount)
}

// Excerpt returns at most n runes of the description, or "" when there is none.
func (b Book) Excerpt(n int) string {
	r := []rune(b.Description)
	if len(r) <= n {
		return b.Description
	}
	return string(r[:n])
}

// Google Books hands out http thumbnails; chat clients refuse mixed content.
func secureURL(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
