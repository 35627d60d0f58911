package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("applies display defaults", func(t *testing.T) {
		b := New("id-1", "  ", nil, "", "", nil, nil, "")
		assert.Equal(t, "Untitled", b.Title)
		assert.Equal(t, "Unknown", b.Authors)
	})

	t.Run("joins authors and upgrades thumbnail", func(t *testing.T) {
		b := New("id-2", "Dune", []string{"Frank Herbert", "Brian Herbert"}, "", "1965", nil, nil, "http://books.google.com/t.jpg")
		assert.Equal(t, "Frank Herbert, Brian Herbert", b.Authors)
		assert.Equal(t, "https://books.google.com/t.jpg", b.ThumbnailURL)
	})
}

func TestFormatting(t *testing.T) {
	rating := 4.3
	pages := 412
	b := Book{AverageRating: &rating, PageCount: &pages, Description: "Дюна — роман"}

	assert.Equal(t, "4.3", b.RatingText("n/a"))
	assert.Equal(t, "412", b.PagesText("n/a"))
	assert.Equal(t, "Дюна", b.Excerpt(4))
	assert.Equal(t, "Дюна — роман", b.Excerpt(100))

	var empty Book
	assert.Equal(t, "n/a", empty.RatingText("n/a"))
	assert.Equal(t, "n/a", empty.PagesText("n/a"))
	assert.Equal(t, 0.0, empty.Rating())
}
