package engine

import (
	"time"

	"github.com/danieljhkim/rsmerge/internal/planner"
	"github.com/danieljhkim/rsmerge/internal/unsafescan"
)

// MergeResult represents the result of a merge.
type MergeResult struct {
	// RootFile is the crate root file that was collected
	RootFile string `json:"root_file"`

	// Modules is the number of modules (file and inline) in the crate
	Modules int `json:"modules"`

	// Files lists every file the plan touches, in plan order
	Files []FileChange `json:"files"`

	// Written is the list of files committed to disk (empty if DryRun)
	Written []string `json:"written"`

	// Conflicts is the list of conflicts that blocked the merge
	Conflicts []planner.Conflict `json:"conflicts"`

	// Replaced, Deleted and Inserted count items by rewrite kind
	Replaced int `json:"replaced"`
	Deleted  int `json:"deleted"`
	Inserted int `json:"inserted"`

	// Created is the number of new module files
	Created int `json:"created"`

	// DryRun indicates nothing was written
	DryRun bool `json:"dry_run"`

	// Elapsed is the wall time of the merge
	Elapsed time.Duration `json:"elapsed_ns"`
}

// Changed reports whether the merge alters any file.
func (r *MergeResult) Changed() bool {
	for _, f := range r.Files {
		if f.Changed {
			return true
		}
	}
	return false
}

// FileChange describes the planned change of one file.
type FileChange struct {
	// Path is the canonical file path
	Path string `json:"path"`

	// RelPath is Path relative to the crate source directory
	RelPath string `json:"rel_path"`

	// Created indicates the file is a new module file
	Created bool `json:"created"`

	// Changed indicates the file content differs after the merge
	Changed bool `json:"changed"`

	// Rewrites is the number of rewrites applied to the file
	Rewrites int `json:"rewrites"`

	// BeforeDigest and AfterDigest are content hashes ("" before creation)
	BeforeDigest string `json:"before_digest,omitempty"`
	AfterDigest  string `json:"after_digest"`

	// Diff is the unified diff, set when requested
	Diff string `json:"diff,omitempty"`
}

// ScanResult represents the result of an unsafe scan.
type ScanResult struct {
	// Reports maps each source name to its report
	Reports map[string]unsafescan.Report `json:"reports"`

	// Elapsed is the wall time of the scan
	Elapsed time.Duration `json:"elapsed_ns"`
}
