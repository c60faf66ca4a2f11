package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ManifestFileName is the Cargo manifest name.
const ManifestFileName = "Cargo.toml"

// ErrNoCrateRoot indicates a directory with no discoverable crate root file.
var ErrNoCrateRoot = errors.New("no crate root found")

type cargoManifest struct {
	Lib *cargoTarget  `toml:"lib"`
	Bin []cargoTarget `toml:"bin"`
}

type cargoTarget struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

// ResolveRoot returns the crate root file for target. A file is used as is;
// a directory is resolved with FindCrateRoot.
func ResolveRoot(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", target, err)
	}
	if !info.IsDir() {
		return target, nil
	}
	return FindCrateRoot(target)
}

// FindCrateRoot picks the root file of the crate in dir: `[lib].path` from
// Cargo.toml, then the first `[[bin]].path`, then src/lib.rs and src/main.rs.
func FindCrateRoot(dir string) (string, error) {
	manifest := filepath.Join(dir, ManifestFileName)
	var m cargoManifest
	if _, err := toml.DecodeFile(manifest, &m); err == nil {
		if m.Lib != nil && strings.TrimSpace(m.Lib.Path) != "" {
			return filepath.Join(dir, filepath.FromSlash(m.Lib.Path)), nil
		}
		for _, bin := range m.Bin {
			if strings.TrimSpace(bin.Path) != "" {
				return filepath.Join(dir, filepath.FromSlash(bin.Path)), nil
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: failed to parse TOML: %w", manifest, err)
	}

	for _, rel := range []string{"src/lib.rs", "src/main.rs"} {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoCrateRoot, dir)
}
