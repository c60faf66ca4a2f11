package modtree

import (
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/rsmerge/internal/rustsrc"
)

// ErrDuplicateModule is returned when two declarations resolve to the same
// module path.
var ErrDuplicateModule = errors.New("module path declared more than once")

// File is one physical source file of the tree.
type File struct {
	// Path is the canonical filesystem path.
	Path string
	// Module is the module path the file was first reached through.
	Module Path
	// Src is the original, unmodified text.
	Src []byte
	// Mode is the file's permission bits, preserved on commit.
	Mode os.FileMode
	// New marks a file that does not exist on disk yet.
	New bool
}

// Location is where a module lives: its owning file, whether it is an inline
// body inside that file, and the offset where appended items are spliced.
type Location struct {
	Path     Path
	File     *File
	Inline   bool
	InsertAt uint32
	// Items are the module's direct items.
	Items []rustsrc.Item
}

// Tree is the module map of one crate. Files are kept in an arena keyed by
// canonical path; locations are keyed by module path.
type Tree struct {
	// Root is the canonical path of the root file.
	Root string
	// RootDir is the directory holding the root file as it was supplied.
	RootDir string
	// Files lists every file in discovery order.
	Files []*File
	// Locations lists every module in the order it was recorded.
	Locations []*Location

	files     map[string]*File
	locations map[string]*Location
	aliases   map[string]Path
}

// NewTree creates an empty tree rooted at root.
func NewTree(root, rootDir string) *Tree {
	return &Tree{
		Root:      root,
		RootDir:   rootDir,
		files:     make(map[string]*File),
		locations: make(map[string]*Location),
		aliases:   make(map[string]Path),
	}
}

// AddFile registers a file. It reports false when a file with the same
// canonical path is already registered.
func (t *Tree) AddFile(f *File) bool {
	if _, ok := t.files[f.Path]; ok {
		return false
	}
	t.files[f.Path] = f
	t.Files = append(t.Files, f)
	return true
}

// File returns the file registered under a canonical path.
func (t *Tree) File(path string) (*File, bool) {
	f, ok := t.files[path]
	return f, ok
}

// AddLocation registers a module location.
func (t *Tree) AddLocation(loc *Location) error {
	key := loc.Path.String()
	if _, ok := t.locations[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateModule, key)
	}
	t.locations[key] = loc
	t.Locations = append(t.Locations, loc)
	return nil
}

// Lookup returns the location of a module path.
func (t *Tree) Lookup(p Path) (*Location, bool) {
	loc, ok := t.locations[p.String()]
	return loc, ok
}

// AddAlias records that module path alias names the same file as target.
func (t *Tree) AddAlias(alias, target Path) {
	t.aliases[alias.String()] = target
}

// Canonical rewrites p so that any aliased prefix is replaced by the module
// path its file was first reached through.
func (t *Tree) Canonical(p Path) Path {
	for i := len(p); i > 0; i-- {
		target, ok := t.aliases[Path(p[:i]).String()]
		if !ok {
			continue
		}
		out := make(Path, 0, len(target)+len(p)-i)
		out = append(out, target...)
		return append(out, p[i:]...)
	}
	return p
}
