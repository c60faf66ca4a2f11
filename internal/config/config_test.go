package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.IndexFile != "mod.rs" {
		t.Errorf("IndexFile = %q, want mod.rs", d.IndexFile)
	}
	if d.Extension != "rs" {
		t.Errorf("Extension = %q, want rs", d.Extension)
	}
	if d.Separator != "\n\n" {
		t.Errorf("Separator = %q", d.Separator)
	}
	if d.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", d.LogLevel)
	}
	if d.Jobs != runtime.NumCPU() {
		t.Errorf("Jobs = %d, want %d", d.Jobs, runtime.NumCPU())
	}
	if err := d.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_NoFile(t *testing.T) {
	s, err := Load(New(), t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.File != "" {
		t.Errorf("File = %q, want empty", s.File)
	}
	if s.Extension != "rs" {
		t.Errorf("Extension = %q, want rs", s.Extension)
	}
}

func TestLoad_FileInParentDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "log_level = \"debug\"\nseparator = \"\\n\"\njobs = 3\n")
	nested := filepath.Join(root, "crates", "core")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	s, err := Load(New(), nested)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", s.LogLevel)
	}
	if s.Separator != "\n" {
		t.Errorf("Separator = %q, want newline", s.Separator)
	}
	if s.Jobs != 3 {
		t.Errorf("Jobs = %d, want 3", s.Jobs)
	}
	if s.File != filepath.Join(root, ConfigFileName) {
		t.Errorf("File = %q", s.File)
	}
	if s.IndexFile != "mod.rs" {
		t.Errorf("unset keys keep defaults, IndexFile = %q", s.IndexFile)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "log_level = \"debug\"\n")
	t.Setenv("RSMERGE_LOG_LEVEL", "error")

	s, err := Load(New(), root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", s.LogLevel)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad log level", content: "log_level = \"loud\"\n"},
		{name: "dotted extension", content: "extension = \".rs\"\n"},
		{name: "zero jobs", content: "jobs = 0\n"},
		{name: "unknown format", content: "format = \"xml\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, ConfigFileName), tt.content)
			_, err := Load(New(), root)
			if !errors.Is(err, ErrInvalidSetting) {
				t.Errorf("error = %v, want ErrInvalidSetting", err)
			}
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFileName), "log_level = \n")
	if _, err := Load(New(), root); err == nil {
		t.Error("expected error for malformed settings file")
	}
}

func TestFindCrateRoot(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{
			name: "lib path from manifest",
			files: map[string]string{
				"Cargo.toml":  "[package]\nname = \"x\"\n\n[lib]\npath = \"lib/root.rs\"\n",
				"lib/root.rs": "",
				"src/lib.rs":  "",
				"src/main.rs": "",
			},
			want: "lib/root.rs",
		},
		{
			name: "first bin path",
			files: map[string]string{
				"Cargo.toml": "[package]\nname = \"x\"\n\n[[bin]]\nname = \"a\"\npath = \"bin/a.rs\"\n\n[[bin]]\nname = \"b\"\npath = \"bin/b.rs\"\n",
			},
			want: "bin/a.rs",
		},
		{
			name: "default lib",
			files: map[string]string{
				"Cargo.toml":  "[package]\nname = \"x\"\n",
				"src/lib.rs":  "",
				"src/main.rs": "",
			},
			want: "src/lib.rs",
		},
		{
			name:  "default main without manifest",
			files: map[string]string{"src/main.rs": ""},
			want:  "src/main.rs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, content := range tt.files {
				writeFile(t, filepath.Join(dir, filepath.FromSlash(name)), content)
			}
			got, err := FindCrateRoot(dir)
			if err != nil {
				t.Fatalf("FindCrateRoot failed: %v", err)
			}
			if want := filepath.Join(dir, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("FindCrateRoot = %q, want %q", got, want)
			}
		})
	}
}

func TestFindCrateRoot_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := FindCrateRoot(dir); !errors.Is(err, ErrNoCrateRoot) {
		t.Errorf("empty dir error = %v, want ErrNoCrateRoot", err)
	}

	writeFile(t, filepath.Join(dir, ManifestFileName), "[lib\n")
	if _, err := FindCrateRoot(dir); err == nil || errors.Is(err, ErrNoCrateRoot) {
		t.Errorf("malformed manifest error = %v", err)
	}
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "src", "lib.rs")
	writeFile(t, lib, "")

	if got, err := ResolveRoot(lib); err != nil || got != lib {
		t.Errorf("ResolveRoot(file) = %q, %v", got, err)
	}
	if got, err := ResolveRoot(dir); err != nil || got != lib {
		t.Errorf("ResolveRoot(dir) = %q, %v", got, err)
	}
	if _, err := ResolveRoot(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected error for missing target")
	}
}
