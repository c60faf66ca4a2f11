package fsops

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// MemFS implements FS over an in-memory tree for testing. Paths are cleaned
// but otherwise used verbatim; Link registers aliases that Canonical
// resolves the way symlinks would be.
type MemFS struct {
	files   map[string]memFile
	dirs    map[string]bool
	links   map[string]string
	failing map[string]error

	// Writes records every successful AtomicWrite target in order.
	Writes []string
}

type memFile struct {
	data []byte
	mode os.FileMode
}

// NewMemFS creates an empty MemFS.
func NewMemFS() *MemFS {
	return &MemFS{
		files:   make(map[string]memFile),
		dirs:    make(map[string]bool),
		links:   make(map[string]string),
		failing: make(map[string]error),
	}
}

// SetFile stores a file with mode 0644, creating its parent directories.
func (m *MemFS) SetFile(path, content string) {
	m.SetFileMode(path, content, 0644)
}

// SetFileMode stores a file with an explicit mode.
func (m *MemFS) SetFileMode(path, content string, mode os.FileMode) {
	path = filepath.Clean(path)
	m.files[path] = memFile{data: []byte(content), mode: mode}
	m.addDirs(filepath.Dir(path))
}

// Link makes alias resolve to target under Canonical.
func (m *MemFS) Link(alias, target string) {
	alias = filepath.Clean(alias)
	target = filepath.Clean(target)
	m.links[alias] = target
}

// FailWrite makes AtomicWrite of path fail with err.
func (m *MemFS) FailWrite(path string, err error) {
	m.failing[filepath.Clean(path)] = err
}

// File returns the content of a stored file.
func (m *MemFS) File(path string) (string, bool) {
	f, ok := m.files[m.resolve(path)]
	return string(f.data), ok
}

// Paths returns every stored file path, sorted.
func (m *MemFS) Paths() []string {
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *MemFS) addDirs(dir string) {
	for {
		m.dirs[dir] = true
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func (m *MemFS) resolve(path string) string {
	path = filepath.Clean(path)
	if target, ok := m.links[path]; ok {
		return target
	}
	return path
}

// Stat returns file info for a stored file or directory.
func (m *MemFS) Stat(path string) (os.FileInfo, error) {
	path = m.resolve(path)
	if f, ok := m.files[path]; ok {
		return &memFileInfo{name: filepath.Base(path), size: int64(len(f.data)), mode: f.mode}, nil
	}
	if m.dirs[path] {
		return &memFileInfo{name: filepath.Base(path), mode: fs.ModeDir | 0755}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

// ReadFile returns a copy of a stored file's content.
func (m *MemFS) ReadFile(path string) ([]byte, error) {
	f, ok := m.files[m.resolve(path)]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return append([]byte(nil), f.data...), nil
}

// Exists checks if a file or directory is stored at path.
func (m *MemFS) Exists(path string) (bool, error) {
	path = m.resolve(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path], nil
}

// Canonical returns the cleaned path with aliases resolved.
func (m *MemFS) Canonical(path string) (string, error) {
	return m.resolve(path), nil
}

// MkdirAll records the directory and its parents.
func (m *MemFS) MkdirAll(path string, perm os.FileMode) error {
	m.addDirs(filepath.Clean(path))
	return nil
}

// AtomicWrite replaces the stored file content unless a failure was injected.
func (m *MemFS) AtomicWrite(path string, data []byte, perm os.FileMode) error {
	path = m.resolve(path)
	if err, ok := m.failing[path]; ok {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	m.SetFileMode(path, string(data), perm)
	m.Writes = append(m.Writes, path)
	return nil
}

// ValidateIdentifier applies the same rules as RealFS.
func (m *MemFS) ValidateIdentifier(id string) error {
	return (&RealFS{}).ValidateIdentifier(id)
}

type memFileInfo struct {
	name string
	size int64
	mode os.FileMode
}

func (i *memFileInfo) Name() string       { return i.name }
func (i *memFileInfo) Size() int64        { return i.size }
func (i *memFileInfo) Mode() os.FileMode  { return i.mode }
func (i *memFileInfo) ModTime() time.Time { return time.Time{} }
func (i *memFileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i *memFileInfo) Sys() any           { return nil }
