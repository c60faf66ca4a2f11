package planner

import "errors"

var (
	// ErrModuleConflict indicates a snippet path that must also be a module.
	ErrModuleConflict = errors.New("snippet path collides with a module")

	// ErrFileExists indicates a file on disk at a module location the
	// collector did not discover.
	ErrFileExists = errors.New("module file exists but is not part of the tree")

	// ErrDuplicatePath indicates one item path defined twice.
	ErrDuplicatePath = errors.New("item path defined more than once")

	// ErrMissingModule indicates a snippet whose module has no location.
	ErrMissingModule = errors.New("module location missing")
)
