// Package planner turns a module tree and a desired-snippet set into a
// per-file list of text rewrites.
//
// Planning is pure with respect to the source tree: it reads only what the
// collector already parsed and checks the filesystem for files that would be
// shadowed by newly created modules. Nothing is written here.
//
// Key responsibilities:
//   - Normalize snippet paths reached through module aliases
//   - Materialize missing modules (new files plus `mod x;` declarations)
//   - Schedule replace, delete and append rewrites per module
//   - Detect conflicts (module collisions, duplicate paths, shadowed files)
package planner
