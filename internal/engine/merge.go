package engine

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/rsmerge/internal/clock"
	"github.com/danieljhkim/rsmerge/internal/modtree"
	"github.com/danieljhkim/rsmerge/internal/patch"
	"github.com/danieljhkim/rsmerge/internal/planner"
)

// Merge brings a crate in line with a snippet set.
//
// Algorithm steps:
// 1. Collect the module tree reachable from the root file
// 2. Plan: normalize aliased paths, materialize missing modules, build rewrites
// 3. Stop with ErrConflict if the plan has conflicts (nothing is written)
// 4. Render every touched file against its original text
// 5. Diff (if requested) and commit (unless DryRun), in plan order
// 6. Return result
func (e *Engine) Merge(ctx context.Context, req *MergeRequest) (*MergeResult, error) {
	start := e.clock.Now()

	if req.RootFile == "" {
		return nil, fmt.Errorf("%w: root file is required", ErrValidation)
	}
	if req.Snippets == nil {
		return nil, fmt.Errorf("%w: snippets are required", ErrValidation)
	}

	tree, err := modtree.Collect(e.fs, req.RootFile, modtree.Options{
		IndexFile: req.IndexFile,
		Extension: req.Extension,
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, fmt.Errorf("failed to collect modules: %w", err)
	}
	base, err := e.fs.Canonical(tree.RootDir)
	if err != nil {
		base = tree.RootDir
	}
	for _, f := range tree.Files {
		e.logger.Debug("visit", "file", relToBase(f.Path, base), "module", f.Module.String())
	}

	result := &MergeResult{
		RootFile:  tree.Root,
		Modules:   len(tree.Locations),
		Files:     []FileChange{},
		Written:   []string{},
		Conflicts: []planner.Conflict{},
		DryRun:    req.DryRun,
	}

	p := planner.New(e.fs, planner.Options{
		UpdateOnly: req.UpdateOnly,
		Extension:  req.Extension,
		Separator:  req.Separator,
	})
	plan, err := p.Plan(tree, req.Snippets)
	if err != nil {
		if planner.IsConflict(err) {
			result.Conflicts = plan.Conflicts
			result.Elapsed = clock.Since(e.clock, start)
			return result, fmt.Errorf("%w: %d conflicts detected: %w", ErrConflict, len(plan.Conflicts), err)
		}
		return nil, fmt.Errorf("failed to build merge plan: %w", err)
	}
	countRewrites(result, plan)

	changes, err := patch.Render(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to render changes: %w", err)
	}

	for i := range changes {
		c := &changes[i]
		fc := FileChange{
			Path:        c.File.Path,
			RelPath:     relToBase(c.File.Path, base),
			Created:     c.File.New,
			Changed:     c.Changed(),
			Rewrites:    c.Rewrites,
			AfterDigest: e.hasher.HashBytes(c.After),
		}
		if !c.File.New {
			fc.BeforeDigest = e.hasher.HashBytes(c.Before)
		}
		if req.Diff && fc.Changed {
			diff, err := patch.Diff(fc.RelPath, c.Before, c.After, c.File.New)
			if err != nil {
				return nil, err
			}
			fc.Diff = diff
		}
		result.Files = append(result.Files, fc)
	}

	if req.DryRun {
		result.Elapsed = clock.Since(e.clock, start)
		return result, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("merge canceled: %w", err)
	}

	written, err := patch.Commit(e.fs, changes)
	result.Written = written
	for _, path := range written {
		e.logger.Info("wrote file", "file", relToBase(path, base))
	}
	if err != nil {
		result.Elapsed = clock.Since(e.clock, start)
		if len(written) > 0 {
			return result, fmt.Errorf("%w: %d of %d files written: %w", ErrPartialCommit, len(written), len(changes), err)
		}
		return result, err
	}

	for _, f := range plan.Created {
		e.logger.Info("created module file", "file", relToBase(f.Path, base), "module", f.Module.String())
	}
	result.Elapsed = clock.Since(e.clock, start)
	e.logger.Info("applied rewrites",
		"replaced", result.Replaced, "deleted", result.Deleted, "inserted", result.Inserted,
		"created", result.Created, "elapsed", result.Elapsed)
	return result, nil
}

// countRewrites tallies items per rewrite kind. An appended snippet is two
// insert rewrites (separator and text) for one item.
func countRewrites(result *MergeResult, plan *planner.Plan) {
	inserted := make(map[string]bool)
	for _, f := range plan.Files {
		for _, rw := range plan.Rewrites[f.Path] {
			switch rw.Op {
			case planner.OpReplace:
				result.Replaced++
			case planner.OpDelete:
				result.Deleted++
			case planner.OpInsert:
				inserted[rw.Item] = true
			}
		}
	}
	result.Inserted = len(inserted)
	result.Created = len(plan.Created)
}
