package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/danieljhkim/rsmerge/internal/config"
	"github.com/danieljhkim/rsmerge/internal/engine"
	"github.com/danieljhkim/rsmerge/internal/planner"
)

func TestOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	result := &engine.MergeResult{RootFile: "/c/src/lib.rs", Replaced: 2}
	if err := outputJSON(&buf, result); err != nil {
		t.Fatalf("outputJSON() error = %v", err)
	}

	var v map[string]any
	if err := json.Unmarshal(buf.Bytes(), &v); err != nil {
		t.Fatalf("outputJSON() produced invalid JSON: %v", err)
	}
	if v["root_file"] != "/c/src/lib.rs" || v["replaced"] != float64(2) {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		want    log.Level
		wantErr bool
	}{
		{name: "warn", level: "warn", want: log.WarnLevel},
		{name: "debug", level: "debug", want: log.DebugLevel},
		{name: "invalid", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := newLogger(&buf, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if l.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", l.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewLogger_LogfmtOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "info")
	if err != nil {
		t.Fatal(err)
	}
	l.Info("wrote file", "file", "x.rs")
	if got := buf.String(); !strings.Contains(got, `msg="wrote file"`) || !strings.Contains(got, "file=x.rs") {
		t.Errorf("expected logfmt output, got %q", got)
	}
}

func TestCurrentSettings_Defaults(t *testing.T) {
	old := settings
	settings = nil
	defer func() { settings = old }()

	if got := currentSettings(); got != config.Defaults() {
		t.Errorf("currentSettings() = %+v, want defaults", got)
	}
}

func TestLoadSnippets_Stdin(t *testing.T) {
	set, err := loadSnippets("-", "auto", strings.NewReader(`{"a::f": "fn f() {}"}`))
	if err != nil {
		t.Fatalf("loadSnippets() error = %v", err)
	}
	if text, ok := set.Get("a::f"); !ok || text != "fn f() {}" {
		t.Errorf("a::f = %q, %v", text, ok)
	}

	if _, err := loadSnippets("-", "toml", strings.NewReader("{}")); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestPrintMergeResult(t *testing.T) {
	tests := []struct {
		name   string
		result *engine.MergeResult
		diff   bool
		want   []string
	}{
		{
			name:   "unchanged",
			result: &engine.MergeResult{Files: []engine.FileChange{{RelPath: "lib.rs"}}},
			want:   []string{"Already up to date"},
		},
		{
			name: "written",
			result: &engine.MergeResult{
				Files:    []engine.FileChange{{Path: "/c/src/x.rs", RelPath: "x.rs", Changed: true, Rewrites: 1}},
				Written:  []string{"/c/src/x.rs"},
				Replaced: 1,
				Modules:  2,
				Elapsed:  time.Millisecond,
			},
			want: []string{
				"✓ Merged snippets: 1 item replaced, 0 items deleted, 0 items inserted, 0 files created",
				"Written:",
				"• x.rs",
				"2 modules in 1ms",
			},
		},
		{
			name: "dry run with diff",
			result: &engine.MergeResult{
				Files: []engine.FileChange{
					{RelPath: "a.rs", Created: true, Changed: true, Rewrites: 2, Diff: "+++ b/a.rs\n+fn f() {}\n"},
				},
				Inserted: 1,
				Created:  1,
				DryRun:   true,
			},
			diff: true,
			want: []string{
				"+fn f() {}",
				"▸ Dry Run",
				"a.rs  created  2",
				"Would apply: 0 items replaced, 0 items deleted, 1 item inserted, 1 file created",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printMergeResult(&buf, tt.result, tt.diff)
			got := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestPrintConflicts(t *testing.T) {
	var buf bytes.Buffer
	printConflicts(&buf, &engine.MergeResult{
		Conflicts: []planner.Conflict{{Path: "a", Reason: "snippet path collides with a module"}},
	})
	got := buf.String()
	for _, want := range []string{"Conflicts Detected", "PATH  REASON", "a     snippet path collides with a module", "No files were written"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"A"}, nil)
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestCountNoun(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, "0 files"},
		{1, "1 file"},
		{3, "3 files"},
	}
	for _, tt := range tests {
		if got := countNoun(tt.count, "file", "files"); got != tt.want {
			t.Errorf("countNoun(%d) = %q, want %q", tt.count, got, tt.want)
		}
	}
}
