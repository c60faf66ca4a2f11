package planner

import (
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/rsmerge/internal/modtree"
	"github.com/danieljhkim/rsmerge/internal/snippets"
)

// Materialize registers a new, empty module file for every module that a
// snippet path needs but the tree lacks, shallowest ancestor first, and
// returns the snippet set extended with a `mod <leaf>;` declaration for each
// of them. Declarations follow all caller snippets, in creation order.
// Nothing is materialized in update-only mode.
func (p *Planner) Materialize(tree *modtree.Tree, set *snippets.Set, plan *Plan) (*snippets.Set, error) {
	if p.opts.UpdateOnly {
		return set, nil
	}
	checker := NewConflictChecker(p.fs, set)

	var decls []snippets.Entry
	failed := make(map[string]bool)
	for _, e := range set.Entries() {
		path, err := modtree.ParsePath(e.Path)
		if err != nil {
			return nil, err
		}
		for _, mod := range path.Parent().Ancestors() {
			if _, ok := tree.Lookup(mod); ok {
				continue
			}
			if failed[mod.String()] {
				break
			}
			decl, err := p.materializeModule(tree, checker, mod, plan)
			if err != nil {
				return nil, err
			}
			if decl == nil {
				failed[mod.String()] = true
				break
			}
			decls = append(decls, *decl)
		}
	}
	if len(decls) == 0 {
		return set, nil
	}

	out, err := snippets.FromEntries(append(set.Entries(), decls...)...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// materializeModule creates one missing module. A nil entry without error
// means a conflict was recorded on the plan.
func (p *Planner) materializeModule(tree *modtree.Tree, checker *ConflictChecker, mod modtree.Path, plan *Plan) (*snippets.Entry, error) {
	for _, seg := range mod {
		if err := p.fs.ValidateIdentifier(seg); err != nil {
			return nil, fmt.Errorf("cannot create module %s: %w", mod, err)
		}
	}

	key := mod.String()
	if c := checker.CheckModuleSnippet(key); c != nil {
		plan.AddConflict(*c)
		return nil, nil
	}

	rel := filepath.Join(mod...) + "." + p.opts.Extension
	filePath := filepath.Join(tree.RootDir, rel)
	if c := checker.CheckModuleFile(key, filePath); c != nil {
		plan.AddConflict(*c)
		return nil, nil
	}

	canon, err := p.fs.Canonical(filePath)
	if err != nil {
		return nil, err
	}
	f := &modtree.File{Path: canon, Module: mod, Mode: 0644, New: true}
	tree.AddFile(f)
	if err := tree.AddLocation(&modtree.Location{Path: mod, File: f}); err != nil {
		return nil, err
	}
	plan.AddCreated(f)

	return &snippets.Entry{Path: key, Text: "mod " + mod.Leaf() + ";"}, nil
}
