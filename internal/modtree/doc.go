// Package modtree resolves a crate's module hierarchy to physical files.
//
// Collect walks module declarations from the root file, following path
// overrides, directory index files and inline module bodies, and returns a
// Tree mapping every module path to its owning file and insertion offset.
// Files are parsed once per canonical path; a file reached through a second
// module path is recorded as an alias of the first.
package modtree
