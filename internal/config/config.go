// Package config loads rsmerge settings and locates crate root files.
//
// Settings come, in increasing precedence, from built-in defaults, the
// nearest .rsmerge.toml at or above the working directory, RSMERGE_*
// environment variables, and command-line flags bound on the viper instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/danieljhkim/rsmerge/internal/snippets"
)

const (
	// AppName is the application name.
	AppName = "rsmerge"
	// ConfigFileName is the per-project settings file.
	ConfigFileName = ".rsmerge.toml"
	// EnvPrefix prefixes every environment variable override.
	EnvPrefix = "RSMERGE"
)

// Setting keys.
const (
	KeyIndexFile = "index_file"
	KeyExtension = "extension"
	KeySeparator = "separator"
	KeyLogLevel  = "log_level"
	KeyJobs      = "jobs"
	KeyFormat    = "format"
)

// ErrInvalidSetting indicates a setting value that cannot be used.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings holds the resolved configuration.
type Settings struct {
	// IndexFile is the file name that makes a directory a module (mod.rs).
	IndexFile string `mapstructure:"index_file"`

	// Extension is the source file extension without the dot (rs).
	Extension string `mapstructure:"extension"`

	// Separator is inserted before every appended item.
	Separator string `mapstructure:"separator"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// Jobs bounds parallel file scanning.
	Jobs int `mapstructure:"jobs"`

	// Format is the snippet file format: auto, json or yaml.
	Format string `mapstructure:"format"`

	// File is the settings file that was read, "" if none.
	File string `mapstructure:"-"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		IndexFile: "mod.rs",
		Extension: "rs",
		Separator: "\n\n",
		LogLevel:  "warn",
		Jobs:      runtime.NumCPU(),
		Format:    "auto",
	}
}

// New returns a viper instance with defaults and environment overrides
// registered. Callers bind flags on it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault(KeyIndexFile, d.IndexFile)
	v.SetDefault(KeyExtension, d.Extension)
	v.SetDefault(KeySeparator, d.Separator)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyJobs, d.Jobs)
	v.SetDefault(KeyFormat, d.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// Load reads the nearest settings file at or above dir into v and returns the
// validated settings.
func Load(v *viper.Viper, dir string) (*Settings, error) {
	path, found, err := FindConfigFile(dir)
	if err != nil {
		return nil, err
	}
	if found {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if found {
		s.File = path
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks every setting.
func (s *Settings) Validate() error {
	if s.Extension == "" || strings.ContainsAny(s.Extension, "./\\") {
		return fmt.Errorf("%w: extension %q", ErrInvalidSetting, s.Extension)
	}
	if s.IndexFile == "" || strings.ContainsAny(s.IndexFile, "/\\") {
		return fmt.Errorf("%w: index_file %q", ErrInvalidSetting, s.IndexFile)
	}
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log_level %q (want debug, info, warn or error)", ErrInvalidSetting, s.LogLevel)
	}
	if s.Jobs < 1 {
		return fmt.Errorf("%w: jobs must be at least 1, got %d", ErrInvalidSetting, s.Jobs)
	}
	if _, err := snippets.ParseFormat(s.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	return nil
}

// FindConfigFile walks up from dir looking for ConfigFileName.
func FindConfigFile(dir string) (string, bool, error) {
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}
