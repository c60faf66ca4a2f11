package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/snippets"
)

// Conflict represents a conflict detected during planning.
type Conflict struct {
	// Path is the module or item path where the conflict was detected
	Path string `json:"path"`

	// Reason is a human-readable explanation of the conflict
	Reason string `json:"reason"`

	// Existing describes what currently occupies the path
	Existing string `json:"existing"`

	// Incoming describes what the plan wants to put there
	Incoming string `json:"incoming"`

	// Err is the sentinel classifying the conflict
	Err error `json:"-"`
}

func (c Conflict) Error() string {
	return fmt.Sprintf("%s: %s", c.Path, c.Reason)
}

func (c Conflict) Unwrap() error {
	return c.Err
}

// ConflictError reports every conflict of a plan. errors.Is matches the
// sentinel of any contained conflict.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("%d conflict(s): %s", len(e.Conflicts), strings.Join(msgs, "; "))
}

func (e *ConflictError) Unwrap() []error {
	errs := make([]error, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		errs = append(errs, c)
	}
	return errs
}

// ConflictChecker checks planned modules against the filesystem and the
// caller's snippets.
type ConflictChecker struct {
	fs       fsops.FS
	snippets *snippets.Set
}

// NewConflictChecker creates a new ConflictChecker.
func NewConflictChecker(fs fsops.FS, set *snippets.Set) *ConflictChecker {
	return &ConflictChecker{
		fs:       fs,
		snippets: set,
	}
}

// CheckModuleFile checks that nothing exists at the file a new module would
// be created at. Returns a Conflict if one is detected, or nil if the path is
// free.
func (c *ConflictChecker) CheckModuleFile(module, filePath string) *Conflict {
	exists, err := c.fs.Exists(filePath)
	if err != nil {
		return &Conflict{
			Path:     module,
			Reason:   fmt.Sprintf("failed to check %s: %v", filePath, err),
			Existing: "unknown",
			Incoming: "new module file",
			Err:      err,
		}
	}
	if exists {
		return &Conflict{
			Path:     module,
			Reason:   fmt.Sprintf("file %s exists on disk but was not reached from the root", filePath),
			Existing: "undiscovered file",
			Incoming: "new module file",
			Err:      ErrFileExists,
		}
	}
	return nil
}

// CheckModuleSnippet checks that the caller did not supply an item snippet
// at a path that must become a module declaration.
func (c *ConflictChecker) CheckModuleSnippet(module string) *Conflict {
	if !c.snippets.Has(module) {
		return nil
	}
	return &Conflict{
		Path:     module,
		Reason:   "path has an explicit snippet but is required as a module by other snippets",
		Existing: "item snippet",
		Incoming: "module declaration",
		Err:      ErrModuleConflict,
	}
}

// IsConflict reports whether err carries planning conflicts.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
