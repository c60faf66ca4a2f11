package modtree

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/rustsrc"
)

// Options controls module file resolution.
type Options struct {
	// IndexFile is the directory index file name, "mod.rs" by default.
	IndexFile string
	// Extension is the source file extension without the dot, "rs" by default.
	Extension string
}

func (o Options) withDefaults() Options {
	if o.IndexFile == "" {
		o.IndexFile = "mod.rs"
	}
	if o.Extension == "" {
		o.Extension = "rs"
	}
	return o
}

// collector resolves module declarations to files. It holds only inputs;
// the tree being built is passed through every call.
type collector struct {
	fs   fsops.FS
	opts Options
}

// Collect parses rootFile and every module file reachable from it. Each
// canonical file is parsed once. Any read or parse error aborts the whole
// collection.
func Collect(fs fsops.FS, rootFile string, opts Options) (*Tree, error) {
	c := &collector{fs: fs, opts: opts.withDefaults()}
	canon, err := fs.Canonical(rootFile)
	if err != nil {
		return nil, err
	}
	t := NewTree(canon, filepath.Dir(rootFile))
	return c.file(t, rootFile, nil, true)
}

func (c *collector) file(t *Tree, path string, mod Path, isRoot bool) (*Tree, error) {
	canon, err := c.fs.Canonical(path)
	if err != nil {
		return nil, err
	}
	if seen, ok := t.File(canon); ok {
		if !seen.Module.Equal(mod) {
			t.AddAlias(mod, seen.Module)
		}
		return t, nil
	}

	src, err := c.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	parsed, err := rustsrc.ParseFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	f := &File{Path: canon, Module: mod, Src: src, Mode: info.Mode().Perm()}
	t.AddFile(f)

	base := strings.TrimSuffix(path, filepath.Ext(path))
	if isRoot || filepath.Base(path) == c.opts.IndexFile {
		base = filepath.Dir(path)
	}

	t, err = c.items(t, f, parsed.Items, base, mod, nil)
	if err != nil {
		return nil, err
	}
	err = t.AddLocation(&Location{
		Path:     mod,
		File:     f,
		InsertAt: parsed.End,
		Items:    parsed.Items,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// items visits the module declarations among items. dirs holds the directory
// components contributed by enclosing inline modules.
func (c *collector) items(t *Tree, f *File, items []rustsrc.Item, base string, mod Path, dirs []string) (*Tree, error) {
	for i := range items {
		it := &items[i]
		if !it.IsModule() {
			continue
		}
		child := mod.Child(it.Name)
		override, hasOverride, err := rustsrc.PathAttr(it)
		if err != nil {
			return nil, fmt.Errorf("%s: module %s: %w", f.Path, child, err)
		}

		if it.IsInlineModule() {
			name := it.Name
			if hasOverride {
				name = override
			}
			nested := append(append([]string(nil), dirs...), name)
			if t, err = c.items(t, f, it.Items, base, child, nested); err != nil {
				return nil, err
			}
			err = t.AddLocation(&Location{
				Path:     child,
				File:     f,
				Inline:   true,
				InsertAt: it.Body.End - 1,
				Items:    it.Items,
			})
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Path, err)
			}
			continue
		}

		dir := filepath.Join(append([]string{base}, dirs...)...)
		var target string
		if hasOverride {
			target = filepath.Join(dir, override)
		} else {
			target, err = c.resolve(dir, it.Name)
			if err != nil {
				return nil, err
			}
		}
		if t, err = c.file(t, target, child, false); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// resolve picks `<name>/<index>` when it exists and `<name>.<ext>` otherwise.
func (c *collector) resolve(dir, name string) (string, error) {
	index := filepath.Join(dir, name, c.opts.IndexFile)
	ok, err := c.fs.Exists(index)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", index, err)
	}
	if ok {
		return index, nil
	}
	return filepath.Join(dir, name+"."+c.opts.Extension), nil
}
