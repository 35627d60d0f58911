// Package genre holds the fixed vocabulary mapping genre display labels to
// catalog subject keywords.
package genre

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed genres.yaml
var builtin []byte

var ErrEmpty = errors.New("genre vocabulary is empty")

// Genre maps a label shown to the user to a catalog subject keyword.
type Genre struct {
	Label   string `yaml:"label"`
	Subject string `yaml:"subject"`
}

type document struct {
	Genres []Genre `yaml:"genres"`
}

// Vocabulary is an ordered, read-only set of genres.
type Vocabulary struct {
	genres  []Genre
	byLabel map[string]string
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("genre: invalid built-in vocabulary: %v", err))
	}
	return v
}

// LoadFile reads a vocabulary from a YAML file.
func LoadFile(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genres file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode genres: %w", err)
	}
	return New(doc.Genres)
}

// New validates genres and builds a Vocabulary preserving their order.
func New(genres []Genre) (*Vocabulary, error) {
	if len(genres) == 0 {
		return nil, ErrEmpty
	}
	v := &Vocabulary{byLabel: make(map[string]string, len(genres))}
	for _, g := range genres {
		g.Label = strings.TrimSpace(g.Label)
		g.Subject = strings.TrimSpace(g.Subject)
		if g.Label == "" || g.Subject == "" {
			return nil, fmt.Errorf("genre %q: label and subject are required", g.Label)
		}
		if _, dup := v.byLabel[g.Label]; dup {
			return nil, fmt.Errorf("genre %q: duplicate label", g.Label)
		}
		v.byLabel[g.Label] = g.Subject
		v.genres = append(v.genres, g)
	}
	return v, nil
}

// Labels returns the display labels in vocabulary order.
func (v *Vocabulary) Labels() []string {
	out := make([]string, len(v.genres))
	for i, g := range v.genres {
		out[i] = g.Label
	}
	return out
}

// Subject resolves a display label to its catalog subject.
func (v *Vocabulary) Subject(label string) (string, bool) {
	s, ok := v.byLabel[label]
	return s, ok
}

// Pick returns the genre at index pick(n), where n is the vocabulary size.
func (v *Vocabulary) Pick(pick func(n int) int) Genre {
	return v.genres[pick(len(v.genres))]
}

func (v *Vocabulary) Len() int { return len(v.genres) }
