package engine

import (
	"path/filepath"
	"strings"
)

// relToBase returns path relative to baseDir in slash form, for diff headers
// and reports. Paths outside baseDir, or that cannot be made relative, are
// returned cleaned and unchanged.
func relToBase(path, baseDir string) string {
	path = filepath.Clean(path)
	if baseDir == "" {
		return filepath.ToSlash(path)
	}

	relPath, err := filepath.Rel(filepath.Clean(baseDir), path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	// Keep paths outside the base absolute
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}

	return filepath.ToSlash(relPath)
}
