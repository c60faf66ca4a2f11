package planner

import (
	"fmt"

	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/modtree"
	"github.com/danieljhkim/rsmerge/internal/rustsrc"
	"github.com/danieljhkim/rsmerge/internal/snippets"
)

// Options controls planning.
type Options struct {
	// UpdateOnly replaces matched items in place and never inserts or
	// deletes anything.
	UpdateOnly bool

	// Extension is the source file extension for new modules, "rs" by default.
	Extension string

	// Separator precedes every appended snippet, "\n\n" by default.
	Separator string
}

// Planner builds merge plans.
type Planner struct {
	fs   fsops.FS
	opts Options
}

// New creates a Planner.
func New(fs fsops.FS, opts Options) *Planner {
	if opts.Extension == "" {
		opts.Extension = "rs"
	}
	if opts.Separator == "" {
		opts.Separator = "\n\n"
	}
	return &Planner{fs: fs, opts: opts}
}

// Plan normalizes, materializes and builds in one step. On conflicts the
// partially built plan is returned together with a *ConflictError. The tree
// gains locations for materialized modules.
func (p *Planner) Plan(tree *modtree.Tree, set *snippets.Set) (*Plan, error) {
	plan := NewPlan()

	normalized := Normalize(tree, set, plan)
	if plan.HasConflicts() {
		return plan, plan.Err()
	}

	desired, err := p.Materialize(tree, normalized, plan)
	if err != nil {
		return plan, err
	}
	if plan.HasConflicts() {
		return plan, plan.Err()
	}

	if err := p.Build(tree, desired, plan); err != nil {
		return plan, err
	}
	if plan.HasConflicts() {
		return plan, plan.Err()
	}

	plan.Sort()
	return plan, nil
}

// Normalize rewrites snippet paths that go through a module alias onto the
// module path the aliased file was first reached through. Two snippets that
// collapse onto one path are a conflict.
func Normalize(tree *modtree.Tree, set *snippets.Set, plan *Plan) *snippets.Set {
	out := snippets.New()
	for _, e := range set.Entries() {
		path, err := modtree.ParsePath(e.Path)
		if err != nil {
			continue
		}
		canon := tree.Canonical(path).String()
		if out.Has(canon) {
			plan.AddConflict(Conflict{
				Path:     canon,
				Reason:   fmt.Sprintf("snippet %q names the same item as an earlier snippet", e.Path),
				Existing: "snippet",
				Incoming: "snippet",
				Err:      ErrDuplicatePath,
			})
			continue
		}
		_ = out.Add(canon, e.Text)
	}
	return out
}

// Build schedules rewrites for every module of the tree: replace items whose
// snippet differs, delete items without a snippet, then append snippets that
// matched nothing. Module declarations are structure and are never deleted
// implicitly. A snippet for an inline module replaces its whole body only
// when no rewrite lands inside that body.
func (p *Planner) Build(tree *modtree.Tree, set *snippets.Set, plan *Plan) error {
	var inline []pendingReplace
	for _, loc := range tree.Locations {
		inline = append(inline, p.buildModule(loc, set, plan)...)
	}

	if !p.opts.UpdateOnly {
		for _, e := range set.Entries() {
			if plan.Applied[e.Path] {
				continue
			}
			path, err := modtree.ParsePath(e.Path)
			if err != nil {
				return err
			}
			loc, ok := tree.Lookup(path.Parent())
			if !ok {
				return fmt.Errorf("%w: %q for snippet %q", ErrMissingModule, path.Parent(), e.Path)
			}
			plan.AddRewrite(loc.File, Rewrite{Op: OpInsert, Start: loc.InsertAt, End: loc.InsertAt, Text: p.opts.Separator, Item: e.Path})
			plan.AddRewrite(loc.File, Rewrite{Op: OpInsert, Start: loc.InsertAt, End: loc.InsertAt, Text: e.Text, Item: e.Path})
		}
	}

	for _, r := range inline {
		if rw, ok := plan.firstWithin(r.file.Path, r.span); ok {
			plan.AddConflict(Conflict{
				Path:     r.key,
				Reason:   fmt.Sprintf("snippet would replace an inline module body that %s %q also rewrites", rw.Op, rw.Item),
				Existing: "inline module",
				Incoming: "item snippet",
				Err:      ErrModuleConflict,
			})
			continue
		}
		plan.AddRewrite(r.file, Rewrite{Op: OpReplace, Start: r.span.Start, End: r.span.End, Text: r.text, Item: r.key})
	}
	return nil
}

// pendingReplace is an inline module replacement held back until every
// other rewrite of its file is known.
type pendingReplace struct {
	file *modtree.File
	span rustsrc.Span
	key  string
	text string
}

func (p *Planner) buildModule(loc *modtree.Location, set *snippets.Set, plan *Plan) []pendingReplace {
	spans := modtree.ItemSpans(loc.Path, loc.Items)
	count := make(map[string]int, len(spans))
	for _, span := range spans {
		count[span.Path.String()]++
	}

	var pending []pendingReplace
	reported := make(map[string]bool)
	for _, span := range spans {
		key := span.Path.String()
		text, ok := set.Get(key)

		// Items in separate namespaces may share a name; only a snippet
		// addressing that name is ambiguous.
		if count[key] > 1 && ok {
			if !reported[key] {
				reported[key] = true
				plan.AddConflict(Conflict{
					Path:     key,
					Reason:   fmt.Sprintf("module %q defines %q more than once; the snippet cannot tell which to replace", loc.Path, span.Path.Leaf()),
					Existing: span.Kind.String(),
					Incoming: "item snippet",
					Err:      ErrDuplicatePath,
				})
			}
			continue
		}

		if !ok {
			if p.opts.UpdateOnly || span.Module {
				continue
			}
			plan.AddRewrite(loc.File, Rewrite{Op: OpDelete, Start: span.Span.Start, End: span.Span.End, Item: key})
			continue
		}

		plan.Applied[key] = true
		if text == span.Span.Text(loc.File.Src) {
			continue
		}
		if span.Inline {
			pending = append(pending, pendingReplace{file: loc.File, span: span.Span, key: key, text: text})
			continue
		}
		plan.AddRewrite(loc.File, Rewrite{Op: OpReplace, Start: span.Span.Start, End: span.Span.End, Text: text, Item: key})
	}
	return pending
}
