// Package patch applies planned rewrites to file text and commits the
// results.
//
// Rewrites are always applied against a file's original text in one forward
// scan. Commits are atomic per file (temp file + rename) but not across
// files: a failure midway leaves earlier files committed.
package patch

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/modtree"
	"github.com/danieljhkim/rsmerge/internal/planner"
)

var (
	// ErrOverlap indicates a rewrite starting before the previous one ended.
	ErrOverlap = errors.New("overlapping rewrites")

	// ErrOutOfRange indicates a rewrite outside the file's text.
	ErrOutOfRange = errors.New("rewrite out of range")
)

// Change is the planned new content of one file.
type Change struct {
	File     *modtree.File
	Before   []byte
	After    []byte
	Rewrites int
}

// Changed reports whether committing the change alters the filesystem.
func (c *Change) Changed() bool {
	return c.File.New || !bytes.Equal(c.Before, c.After)
}

// Apply splices rewrites into src. Rewrites are ordered by (Start, End, Seq)
// first, so zero-width inserts at one offset land in submission order.
func Apply(src []byte, rewrites []planner.Rewrite) ([]byte, error) {
	sorted := slices.Clone(rewrites)
	slices.SortStableFunc(sorted, planner.CompareRewrites)

	size := len(src)
	for _, rw := range sorted {
		size += len(rw.Text)
	}
	out := make([]byte, 0, size)

	var pos uint32
	for _, rw := range sorted {
		if rw.Start < pos {
			return nil, fmt.Errorf("%w: previous rewrite ended at %d, but %s rewrite of %q covers %d..%d",
				ErrOverlap, pos, rw.Op, rw.Item, rw.Start, rw.End)
		}
		if rw.End < rw.Start || int(rw.End) > len(src) {
			return nil, fmt.Errorf("%w: %d..%d in %d bytes", ErrOutOfRange, rw.Start, rw.End, len(src))
		}
		out = append(out, src[pos:rw.Start]...)
		out = append(out, rw.Text...)
		pos = rw.End
	}
	return append(out, src[pos:]...), nil
}

// Render computes the new content of every file in the plan, in plan order.
// Files without rewrites are skipped unless they still have to be created.
func Render(plan *planner.Plan) ([]Change, error) {
	changes := make([]Change, 0, len(plan.Files))
	for _, f := range plan.Files {
		rws := plan.Rewrites[f.Path]
		if len(rws) == 0 && !f.New {
			continue
		}
		after, err := Apply(f.Src, rws)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Path, err)
		}
		changes = append(changes, Change{File: f, Before: f.Src, After: after, Rewrites: len(rws)})
	}
	return changes, nil
}

// Commit writes every change atomically, in order, and returns the paths
// written. It stops at the first failure; files already written stay
// written.
func Commit(fs fsops.FS, changes []Change) ([]string, error) {
	written := make([]string, 0, len(changes))
	for _, c := range changes {
		if !c.Changed() {
			continue
		}
		if c.File.New {
			if err := fs.MkdirAll(filepath.Dir(c.File.Path), 0755); err != nil {
				return written, fmt.Errorf("failed to create directory for %s: %w", c.File.Path, err)
			}
		}
		mode := c.File.Mode
		if mode == 0 {
			mode = 0644
		}
		if err := fs.AtomicWrite(c.File.Path, c.After, mode); err != nil {
			return written, fmt.Errorf("failed to commit %s: %w", c.File.Path, err)
		}
		written = append(written, c.File.Path)
	}
	return written, nil
}
