package engine

import "errors"

var (
	// ErrConflict indicates the merge plan has conflicts and nothing was written.
	ErrConflict = errors.New("conflict detected")

	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the crate root or a module file was not found.
	ErrNotFound = errors.New("not found")

	// ErrPartialCommit indicates a commit failed after some files were written.
	ErrPartialCommit = errors.New("partial commit")
)
