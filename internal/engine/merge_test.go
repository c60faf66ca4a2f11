package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/danieljhkim/rsmerge/internal/clock"
	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/hash"
	"github.com/danieljhkim/rsmerge/internal/planner"
	"github.com/danieljhkim/rsmerge/internal/rustsrc"
	"github.com/danieljhkim/rsmerge/internal/snippets"
)

func newTestEngine(fs fsops.FS) *Engine {
	clk := clock.NewTickingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Millisecond)
	return New(fs, hash.NewSHA256Hasher(), clk, nil)
}

// writeCrate lays out files under a temp dir and returns the dir.
func writeCrate(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func readCrateFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

func mustSet(t *testing.T, pairs ...string) *snippets.Set {
	t.Helper()
	set := snippets.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := set.Add(pairs[i], pairs[i+1]); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	return set
}

func merge(t *testing.T, dir string, req MergeRequest) (*MergeResult, error) {
	t.Helper()
	req.RootFile = filepath.Join(dir, "src", "lib.rs")
	return newTestEngine(fsops.NewRealFS()).Merge(context.Background(), &req)
}

func TestMerge_EndToEnd(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\n",
		"src/x.rs":   "fn old() {}\n",
	})
	set := mustSet(t,
		"x::old", "fn old() { 1 }",
		"x::new", "fn new() {}",
	)

	result, err := merge(t, dir, MergeRequest{Snippets: set})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if got := readCrateFile(t, dir, "src/x.rs"); got != "fn old() { 1 }\n\nfn new() {}\n" {
		t.Errorf("x.rs = %q", got)
	}
	if got := readCrateFile(t, dir, "src/lib.rs"); got != "mod x;\n" {
		t.Errorf("lib.rs should be unchanged, got %q", got)
	}
	if result.Replaced != 1 || result.Inserted != 1 || result.Deleted != 0 || result.Created != 0 {
		t.Errorf("counts = replaced %d, inserted %d, deleted %d, created %d",
			result.Replaced, result.Inserted, result.Deleted, result.Created)
	}
	if len(result.Written) != 1 || filepath.Base(result.Written[0]) != "x.rs" {
		t.Errorf("Written = %v, want only x.rs", result.Written)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file change, got %d", len(result.Files))
	}
	fc := result.Files[0]
	if fc.RelPath != "x.rs" {
		t.Errorf("RelPath = %q, want x.rs (relative to the crate source dir)", fc.RelPath)
	}
	if fc.BeforeDigest == "" || fc.AfterDigest == "" || fc.BeforeDigest == fc.AfterDigest {
		t.Errorf("digests = %q -> %q", fc.BeforeDigest, fc.AfterDigest)
	}
	if result.Elapsed <= 0 {
		t.Errorf("Elapsed = %v, want > 0", result.Elapsed)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\n",
		"src/x.rs":   "fn old() {}\n",
	})
	set := mustSet(t,
		"x::old", "fn old() { 1 }",
		"x::new", "fn new() {}",
		"y::z::leaf", "fn leaf() {}",
	)

	if _, err := merge(t, dir, MergeRequest{Snippets: set}); err != nil {
		t.Fatalf("first Merge failed: %v", err)
	}
	first := map[string]string{}
	for _, name := range []string{"src/lib.rs", "src/x.rs", "src/y.rs", "src/y/z.rs"} {
		first[name] = readCrateFile(t, dir, name)
	}

	result, err := merge(t, dir, MergeRequest{Snippets: set})
	if err != nil {
		t.Fatalf("second Merge failed: %v", err)
	}
	if result.Changed() || len(result.Written) != 0 {
		t.Errorf("second run changed files: %+v", result.Files)
	}
	if result.Replaced+result.Deleted+result.Inserted+result.Created != 0 {
		t.Errorf("second run scheduled rewrites: %+v", result)
	}
	for name, want := range first {
		if got := readCrateFile(t, dir, name); got != want {
			t.Errorf("%s changed on second run: %q -> %q", name, want, got)
		}
	}
}

func TestMerge_PreservesOrder(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "fn a() {}\n// between\nfn b() {}\n",
	})
	set := mustSet(t,
		"a", "fn a() { 1 }",
		"b", "fn b() {}",
		"c", "fn c() {}",
	)

	if _, err := merge(t, dir, MergeRequest{Snippets: set}); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	want := "fn a() { 1 }\n// between\nfn b() {}\n\nfn c() {}\n"
	if got := readCrateFile(t, dir, "src/lib.rs"); got != want {
		t.Errorf("lib.rs = %q, want %q", got, want)
	}
}

func TestMerge_DeletesItemsMissingFromSnippets(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\nfn keep() {}\nfn gone() {}\n",
		"src/x.rs":   "",
	})
	set := mustSet(t, "keep", "fn keep() {}")

	result, err := merge(t, dir, MergeRequest{Snippets: set})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got := readCrateFile(t, dir, "src/lib.rs"); got != "mod x;\nfn keep() {}\n\n" {
		t.Errorf("lib.rs = %q", got)
	}
	if result.Deleted != 1 {
		t.Errorf("Deleted = %d, want 1", result.Deleted)
	}
}

func TestMerge_CreatesModules(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "",
	})
	set := mustSet(t, "a::b::leaf", "fn leaf() {}")

	result, err := merge(t, dir, MergeRequest{Snippets: set})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{name: "src/lib.rs", want: "\n\nmod a;"},
		{name: "src/a.rs", want: "\n\nmod b;"},
		{name: "src/a/b.rs", want: "\n\nfn leaf() {}"},
	}
	for _, tt := range tests {
		if got := readCrateFile(t, dir, tt.name); got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, got, tt.want)
		}
	}
	if result.Created != 2 {
		t.Errorf("Created = %d, want 2", result.Created)
	}
	created := 0
	for _, fc := range result.Files {
		if fc.Created {
			created++
			if fc.BeforeDigest != "" {
				t.Errorf("created file %s has a before digest", fc.RelPath)
			}
		}
	}
	if created != 2 {
		t.Errorf("created file changes = %d, want 2", created)
	}
}

func TestMerge_ConflictWritesNothing(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "fn main() {}\n",
	})
	set := mustSet(t,
		"main", "fn main() { 1 }",
		"a", "fn a() {}",
		"a::b::c", "fn c() {}",
	)

	result, err := merge(t, dir, MergeRequest{Snippets: set})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
	if !errors.Is(err, planner.ErrModuleConflict) {
		t.Errorf("error should wrap planner.ErrModuleConflict: %v", err)
	}
	if result == nil || len(result.Conflicts) == 0 {
		t.Fatal("expected conflicts in result")
	}
	if result.Conflicts[0].Path != "a" {
		t.Errorf("conflict path = %q, want a", result.Conflicts[0].Path)
	}

	if got := readCrateFile(t, dir, "src/lib.rs"); got != "fn main() {}\n" {
		t.Errorf("lib.rs changed despite conflict: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "a.rs")); !os.IsNotExist(err) {
		t.Errorf("a.rs must not be created, stat error = %v", err)
	}
}

func TestMerge_ExistingFileAtNewModuleLocation(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs":   "",
		"src/stray.rs": "fn s() {}\n",
	})
	set := mustSet(t, "stray::f", "fn f() {}")

	_, err := merge(t, dir, MergeRequest{Snippets: set})
	if !errors.Is(err, planner.ErrFileExists) {
		t.Fatalf("error = %v, want ErrFileExists", err)
	}
	if got := readCrateFile(t, dir, "src/lib.rs"); got != "" {
		t.Errorf("lib.rs changed despite conflict: %q", got)
	}
}

func TestMerge_UpdateOnly(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\n",
		"src/x.rs":   "fn keep() {}\nfn old() {}\n",
	})
	set := mustSet(t,
		"x::old", "fn old() { 2 }",
		"x::brand", "fn brand() {}",
		"y::z::leaf", "fn leaf() {}",
	)

	result, err := merge(t, dir, MergeRequest{Snippets: set, UpdateOnly: true})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got := readCrateFile(t, dir, "src/x.rs"); got != "fn keep() {}\nfn old() { 2 }\n" {
		t.Errorf("x.rs = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "y.rs")); !os.IsNotExist(err) {
		t.Errorf("update-only must not create modules, stat error = %v", err)
	}
	if result.Inserted != 0 || result.Deleted != 0 || result.Created != 0 {
		t.Errorf("update-only scheduled inserts/deletes: %+v", result)
	}
}

func TestMerge_DryRunWithDiff(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\n",
		"src/x.rs":   "fn old() {}\n",
	})
	set := mustSet(t,
		"x::old", "fn old() {}",
		"x::new", "fn new() {}",
		"y::f", "fn f() {}",
	)

	result, err := merge(t, dir, MergeRequest{Snippets: set, DryRun: true, Diff: true})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if !result.DryRun || len(result.Written) != 0 {
		t.Errorf("dry run wrote files: %v", result.Written)
	}
	if got := readCrateFile(t, dir, "src/x.rs"); got != "fn old() {}\n" {
		t.Errorf("dry run changed x.rs: %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "y.rs")); !os.IsNotExist(err) {
		t.Errorf("dry run created y.rs, stat error = %v", err)
	}

	diffs := map[string]string{}
	for _, fc := range result.Files {
		diffs[fc.RelPath] = fc.Diff
	}
	if !strings.Contains(diffs["x.rs"], "+fn new() {}") {
		t.Errorf("x.rs diff missing insert:\n%s", diffs["x.rs"])
	}
	if !strings.Contains(diffs["y.rs"], "--- /dev/null") {
		t.Errorf("y.rs diff should start from /dev/null:\n%s", diffs["y.rs"])
	}
	if !strings.Contains(diffs["lib.rs"], "+mod y;") {
		t.Errorf("lib.rs diff missing module declaration:\n%s", diffs["lib.rs"])
	}
}

func TestMerge_ParseErrorWritesNothing(t *testing.T) {
	dir := writeCrate(t, map[string]string{
		"src/lib.rs": "mod x;\nfn a() {}\n",
		"src/x.rs":   "fn broken( {\n",
	})
	set := mustSet(t, "a", "fn a() { 1 }")

	_, err := merge(t, dir, MergeRequest{Snippets: set})
	var synErr *rustsrc.SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("expected *rustsrc.SyntaxError, got %v", err)
	}
	if got := readCrateFile(t, dir, "src/lib.rs"); got != "mod x;\nfn a() {}\n" {
		t.Errorf("lib.rs changed despite parse error: %q", got)
	}
}

func TestMerge_RequestErrors(t *testing.T) {
	eng := newTestEngine(fsops.NewRealFS())

	_, err := eng.Merge(context.Background(), &MergeRequest{RootFile: "lib.rs"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("nil snippets error = %v, want ErrValidation", err)
	}

	_, err = eng.Merge(context.Background(), &MergeRequest{Snippets: snippets.New()})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("empty root error = %v, want ErrValidation", err)
	}

	_, err = eng.Merge(context.Background(), &MergeRequest{
		RootFile: filepath.Join(t.TempDir(), "missing.rs"),
		Snippets: snippets.New(),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing root error = %v, want ErrNotFound", err)
	}
}

func TestMerge_PartialCommit(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.SetFile("/crate/src/lib.rs", "mod x;\nmod y;\n")
	fs.SetFile("/crate/src/x.rs", "fn a() {}")
	fs.SetFile("/crate/src/y.rs", "fn b() {}")
	fs.FailWrite("/crate/src/y.rs", errors.New("disk full"))

	set := mustSet(t,
		"x::a", "fn a() { 1 }",
		"y::b", "fn b() { 1 }",
	)
	result, err := newTestEngine(fs).Merge(context.Background(), &MergeRequest{
		RootFile: "/crate/src/lib.rs",
		Snippets: set,
	})
	if !errors.Is(err, ErrPartialCommit) {
		t.Fatalf("error = %v, want ErrPartialCommit", err)
	}
	if len(result.Written) != 1 || result.Written[0] != "/crate/src/x.rs" {
		t.Errorf("Written = %v, want only x.rs", result.Written)
	}
	if got, _ := fs.File("/crate/src/x.rs"); got != "fn a() { 1 }" {
		t.Errorf("x.rs should stay committed, got %q", got)
	}
	want := []string{"/crate/src/lib.rs", "/crate/src/x.rs", "/crate/src/y.rs"}
	if got := fs.Paths(); !slices.Equal(got, want) {
		t.Errorf("files after partial commit = %v, want %v", got, want)
	}
}

func TestMerge_CanceledContext(t *testing.T) {
	fs := fsops.NewMemFS()
	fs.SetFile("/crate/src/lib.rs", "fn a() {}")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEngine(fs).Merge(ctx, &MergeRequest{
		RootFile: "/crate/src/lib.rs",
		Snippets: mustSet(t, "a", "fn a() { 1 }"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got, _ := fs.File("/crate/src/lib.rs"); got != "fn a() {}" {
		t.Errorf("lib.rs written after cancel: %q", got)
	}
}
