package planner

import (
	"cmp"
	"slices"

	"github.com/danieljhkim/rsmerge/internal/modtree"
	"github.com/danieljhkim/rsmerge/internal/rustsrc"
)

// Plan is the set of rewrites for one merge run.
type Plan struct {
	// Files lists touched files in the order they were first touched.
	Files []*modtree.File

	// Rewrites holds each file's rewrites, keyed by canonical path.
	Rewrites map[string][]Rewrite

	// Created lists module files that do not exist on disk yet.
	Created []*modtree.File

	// Applied records the snippet paths that matched an existing item.
	Applied map[string]bool

	// Conflicts is a list of detected conflicts (empty if no conflicts)
	Conflicts []Conflict

	seq int
}

// Rewrite replaces [Start, End) of a file's original text with Text.
type Rewrite struct {
	// Op is the rewrite type: "replace", "delete", "insert"
	Op string

	// File is the canonical path of the file being rewritten
	File string

	Start uint32
	End   uint32
	Text  string

	// Item is the qualified item path the rewrite belongs to
	Item string

	// Seq is the submission order, used to break ties between rewrites at
	// the same offsets.
	Seq int
}

// Rewrite op constants
const (
	OpReplace = "replace"
	OpDelete  = "delete"
	OpInsert  = "insert"
)

// NewPlan creates a new empty Plan.
func NewPlan() *Plan {
	return &Plan{
		Files:     []*modtree.File{},
		Rewrites:  make(map[string][]Rewrite),
		Applied:   make(map[string]bool),
		Conflicts: []Conflict{},
	}
}

// HasConflicts returns true if the plan has any conflicts.
func (p *Plan) HasConflicts() bool {
	return len(p.Conflicts) > 0
}

// AddConflict adds a conflict to the plan.
func (p *Plan) AddConflict(conflict Conflict) {
	p.Conflicts = append(p.Conflicts, conflict)
}

// Err returns a *ConflictError when the plan has conflicts.
func (p *Plan) Err() error {
	if !p.HasConflicts() {
		return nil
	}
	return &ConflictError{Conflicts: p.Conflicts}
}

// AddRewrite schedules a rewrite against f and stamps its sequence number.
func (p *Plan) AddRewrite(f *modtree.File, rw Rewrite) {
	p.touch(f)
	rw.File = f.Path
	rw.Seq = p.seq
	p.seq++
	p.Rewrites[f.Path] = append(p.Rewrites[f.Path], rw)
}

// AddCreated records a module file that must be created on commit.
func (p *Plan) AddCreated(f *modtree.File) {
	p.touch(f)
	p.Created = append(p.Created, f)
}

func (p *Plan) touch(f *modtree.File) {
	if _, ok := p.Rewrites[f.Path]; ok {
		return
	}
	p.Rewrites[f.Path] = []Rewrite{}
	p.Files = append(p.Files, f)
}

// Sort orders every file's rewrites by (Start, End, Seq), so zero-width
// inserts at one offset keep their submission order.
func (p *Plan) Sort() {
	for _, rws := range p.Rewrites {
		slices.SortStableFunc(rws, CompareRewrites)
	}
}

// CompareRewrites orders rewrites by (Start, End, Seq).
func CompareRewrites(a, b Rewrite) int {
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.End, b.End); c != 0 {
		return c
	}
	return cmp.Compare(a.Seq, b.Seq)
}

// RewriteCount returns the number of scheduled rewrites across all files.
func (p *Plan) RewriteCount() int {
	n := 0
	for _, rws := range p.Rewrites {
		n += len(rws)
	}
	return n
}

// firstWithin returns the first rewrite of file that starts inside span and
// does not reach past its end.
func (p *Plan) firstWithin(file string, span rustsrc.Span) (Rewrite, bool) {
	for _, rw := range p.Rewrites[file] {
		if rw.Start >= span.Start && rw.Start < span.End && rw.End <= span.End {
			return rw, true
		}
	}
	return Rewrite{}, false
}
