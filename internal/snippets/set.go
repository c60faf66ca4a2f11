// Package snippets holds the desired-snippet mapping for a merge run.
//
// A Set maps qualified item paths to their full desired text. Insertion order
// is significant: new items are appended to their module in the order they
// appear in the source document.
package snippets

import (
	"errors"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/danieljhkim/rsmerge/internal/modtree"
)

var (
	// ErrDuplicateKey is returned when a path occurs twice in one document.
	ErrDuplicateKey = errors.New("duplicate snippet path")

	// ErrInvalidPath is returned for keys that are not qualified item paths.
	ErrInvalidPath = errors.New("invalid snippet path")
)

// Entry is one snippet.
type Entry struct {
	Path string
	Text string
}

// Set is an insertion-ordered mapping from qualified item path to text.
type Set struct {
	m *orderedmap.OrderedMap[string, string]
}

// New creates an empty Set.
func New() *Set {
	return &Set{m: orderedmap.New[string, string]()}
}

// FromEntries builds a Set, failing on duplicate or malformed paths.
func FromEntries(entries ...Entry) (*Set, error) {
	s := New()
	for _, e := range entries {
		if err := s.Add(e.Path, e.Text); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends a snippet. The path must be a qualified item path and must not
// already be present.
func (s *Set) Add(path, text string) error {
	p, err := modtree.ParsePath(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if p.IsRoot() {
		return fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if _, ok := s.m.Get(path); ok {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, path)
	}
	s.m.Set(path, text)
	return nil
}

// Get returns the text for path.
func (s *Set) Get(path string) (string, bool) {
	return s.m.Get(path)
}

// Has reports whether path is present.
func (s *Set) Has(path string) bool {
	_, ok := s.m.Get(path)
	return ok
}

// Len returns the number of snippets.
func (s *Set) Len() int {
	return s.m.Len()
}

// Entries returns the snippets in insertion order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, 0, s.m.Len())
	for pair := s.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Entry{Path: pair.Key, Text: pair.Value})
	}
	return out
}
