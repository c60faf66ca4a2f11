package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/danieljhkim/rsmerge/internal/clock"
	"github.com/danieljhkim/rsmerge/internal/config"
	"github.com/danieljhkim/rsmerge/internal/engine"
	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/hash"
)

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() *engine.Engine {
	return engine.New(fsops.NewRealFS(), hash.NewSHA256Hasher(), &clock.RealClock{}, logger)
}

// currentSettings returns the resolved settings, or the defaults when a
// command runs without the root pre-run hook.
func currentSettings() config.Settings {
	if settings == nil {
		return config.Defaults()
	}
	return *settings
}

// newLogger creates a leveled logger on w. Output that is not a terminal
// gets logfmt so it stays machine-readable.
func newLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l := log.NewWithOptions(w, log.Options{
		Prefix: config.AppName,
		Level:  lvl,
	})
	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		l.SetFormatter(log.LogfmtFormatter)
	}
	return l, nil
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// stdinIsPipe reports whether stdin carries redirected input.
func stdinIsPipe() bool {
	info, err := os.Stdin.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice == 0
}
