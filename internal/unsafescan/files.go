package unsafescan

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
)

// SingleFileName is the name reported for source read without a file name.
const SingleFileName = "input.rs"

// Source is one named file to scan.
type Source struct {
	Name string
	Text []byte
}

// ScanError names the file that failed to scan.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// ScanFiles scans sources in parallel with at most jobs workers and returns
// the reports keyed by source name. The first failure cancels the rest.
func ScanFiles(ctx context.Context, sources []Source, jobs int) (map[string]Report, error) {
	if len(sources) == 0 {
		return map[string]Report{}, nil
	}
	if jobs <= 0 {
		jobs = 1
	}

	results := make([]Report, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(sources)))

	for i, src := range sources {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rep, err := ScanSource(src.Text)
			if err != nil {
				return &ScanError{Path: src.Name, Err: err}
			}
			results[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]Report, len(sources))
	for i, src := range sources {
		out[src.Name] = results[i]
	}
	return out, nil
}

// DecodeMsgpack reads a msgpack map of file name to file text.
func DecodeMsgpack(r io.Reader) ([]Source, error) {
	var files map[string]string
	if err := msgpack.NewDecoder(r).Decode(&files); err != nil {
		return nil, fmt.Errorf("failed to decode file map: %w", err)
	}
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		sources = append(sources, Source{Name: name, Text: []byte(files[name])})
	}
	return sources, nil
}

// EncodeMsgpack writes sources as a msgpack map of file name to file text.
func EncodeMsgpack(w io.Writer, sources []Source) error {
	files := make(map[string]string, len(sources))
	for _, src := range sources {
		files[src.Name] = string(src.Text)
	}
	return msgpack.NewEncoder(w).Encode(files)
}

// ReadSingle reads one file's text from r under SingleFileName.
func ReadSingle(r io.Reader) ([]Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return []Source{{Name: SingleFileName, Text: data}}, nil
}

// LoadFiles expands doublestar patterns ("src/**/*.rs") and reads every
// matching file once, in sorted order. A pattern without glob syntax must
// name an existing file.
func LoadFiles(patterns []string) ([]Source, error) {
	seen := make(map[string]bool)
	var names []string
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(pat, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pat, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pat); err != nil {
				return nil, fmt.Errorf("no files match %q", pat)
			}
			matches = []string{pat}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				names = append(names, m)
			}
		}
	}
	sort.Strings(names)

	sources := make([]Source, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		sources = append(sources, Source{Name: name, Text: data})
	}
	return sources, nil
}
