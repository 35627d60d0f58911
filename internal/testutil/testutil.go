package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"

	"bookbot/internal/book"
)

// Book builds a catalog book for testing. A zero rating means unrated.
func Book(id, title string, rating float64, published string) book.Book {
	var r *float64
	if rating > 0 {
		r = &rating
	}
	pages := 100 + len(title)
	return book.New(id, title, []string{"Test Author"}, "A test description for "+title, published, r, &pages, "")
}

// Books builds n distinct books with ids b1..bn.
func Books(n int) []book.Book {
	out := make([]book.Book, n)
	for i := range out {
		id := "b" + strconv.Itoa(i+1)
		out[i] = Book(id, "Book "+id, 0, "")
	}
	return out
}

// Dune is a fully populated book for testing
var Dune = book.New(
	"B1gZAAAAQBAJ",
	"Dune",
	[]string{"Frank Herbert"},
	"Set on the desert planet Arrakis, Dune is the story of the boy Paul Atreides, heir to a noble family tasked with ruling an inhospitable world where the only thing of value is the spice melange.",
	"1965-08-01",
	ptr(4.3),
	ptr(412),
	"http://books.google.com/books/content?id=B1gZAAAAQBAJ",
)

// Neuromancer is a sparsely populated book for testing
var Neuromancer = book.New("neuro42", "Neuromancer", []string{"William Gibson"}, "", "1984", nil, nil, "")

func ptr[T any](v T) *T { return &v }

// NewRequest creates a new HTTP request for testing
func NewRequest(method, path string, body any) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	bodyBytes, _ := json.Marshal(body)
	r := httptest.NewRequest(method, path, bytes.NewReader(bodyBytes))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code   int
	Header http.Header
	Body   map[string]any
}

// RecordHTTPResponse records the HTTP response
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code:   result.StatusCode,
		Header: result.Header,
		Body:   bodyMap,
	}
}
