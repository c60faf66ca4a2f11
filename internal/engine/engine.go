// Package engine provides the core operations of rsmerge.
//
// The engine package acts as the orchestration layer between the CLI (or MCP
// server) and the lower-level packages. It collects a crate's module tree,
// plans the snippet merge, renders and commits the patched files, and runs
// unsafe scans.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Merge: Collect, plan, render, then diff or commit
//   - ScanUnsafe: Parallel unsafe usage report over many files
package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/danieljhkim/rsmerge/internal/clock"
	"github.com/danieljhkim/rsmerge/internal/fsops"
	"github.com/danieljhkim/rsmerge/internal/hash"
)

// Engine orchestrates all rsmerge operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs     fsops.FS
	hasher hash.Hasher
	clock  clock.Clock
	logger *log.Logger
}

// New creates a new Engine with the given dependencies. A nil logger
// discards all output.
func New(
	fs fsops.FS,
	hasher hash.Hasher,
	clk clock.Clock,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		fs:     fs,
		hasher: hasher,
		clock:  clk,
		logger: logger,
	}
}
