package modtree

import (
	"fmt"
	"strings"
)

// Sep joins module path segments in the textual form.
const Sep = "::"

// Path is a module path. The empty path is the crate root.
type Path []string

// ParsePath splits a `a::b::c` string into a Path. The empty string is the
// root path; empty segments are rejected.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, nil
	}
	segs := strings.Split(s, Sep)
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", s)
		}
	}
	return Path(segs), nil
}

func (p Path) String() string {
	return strings.Join(p, Sep)
}

// IsRoot reports whether p is the crate root.
func (p Path) IsRoot() bool {
	return len(p) == 0
}

// Parent returns p without its last segment. The parent of the root is the
// root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1:len(p)-1]
}

// Leaf returns the last segment, or "" for the root.
func (p Path) Leaf() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Child returns a new path with name appended. p is never modified.
func (p Path) Child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// Ancestors returns every non-root prefix of p, shallowest first, ending
// with p itself.
func (p Path) Ancestors() []Path {
	out := make([]Path, 0, len(p))
	for i := 1; i <= len(p); i++ {
		out = append(out, p[:i:i])
	}
	return out
}

// Equal reports whether p and o have the same segments.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
