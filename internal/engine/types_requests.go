package engine

import (
	"github.com/danieljhkim/rsmerge/internal/snippets"
	"github.com/danieljhkim/rsmerge/internal/unsafescan"
)

// MergeRequest represents a request to merge snippets into a crate.
type MergeRequest struct {
	// RootFile is the crate root file (lib.rs, main.rs or any .rs file)
	RootFile string

	// Snippets maps qualified item paths to their desired text
	Snippets *snippets.Set

	// UpdateOnly replaces matched items only: no deletes, inserts or new modules
	UpdateOnly bool

	// DryRun performs planning only without writing files
	DryRun bool

	// Diff requests a unified diff for every changed file
	Diff bool

	// IndexFile is the directory module file name (default: mod.rs)
	IndexFile string

	// Extension is the source file extension without the dot (default: rs)
	Extension string

	// Separator precedes appended snippets (default: "\n\n")
	Separator string
}

// ScanRequest represents a request to scan sources for unsafe code.
type ScanRequest struct {
	// Sources are the files to scan
	Sources []unsafescan.Source

	// Jobs bounds the number of files scanned in parallel
	Jobs int
}
