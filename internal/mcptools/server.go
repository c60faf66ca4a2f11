// Package mcptools exposes merge and unsafe-scan operations as Model Context
// Protocol tools over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/danieljhkim/rsmerge/internal/config"
	"github.com/danieljhkim/rsmerge/internal/engine"
	"github.com/danieljhkim/rsmerge/internal/snippets"
	"github.com/danieljhkim/rsmerge/internal/unsafescan"
)

// Tool names.
const (
	ToolMergeSnippets = "merge_snippets"
	ToolScanUnsafe    = "scan_unsafe"
)

// Options configures the server.
type Options struct {
	Name    string
	Version string

	// Settings supply merge defaults and scan parallelism.
	Settings config.Settings
}

type handlers struct {
	eng      *engine.Engine
	settings config.Settings
}

// NewServer creates an MCP server with the rsmerge tools registered.
func NewServer(eng *engine.Engine, opts Options) *server.MCPServer {
	s := server.NewMCPServer(
		opts.Name,
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	h := &handlers{eng: eng, settings: opts.Settings}
	addMergeSnippetsTool(s, h)
	addScanUnsafeTool(s, h)
	return s
}

// ServeStdio serves s on stdin and stdout until the input is closed.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// addMergeSnippetsTool adds the merge_snippets tool to the MCP server
func addMergeSnippetsTool(s *server.MCPServer, h *handlers) {
	tool := mcp.NewTool(ToolMergeSnippets,
		mcp.WithDescription("Merge item snippets into a Rust crate: replace matching items, delete items without a snippet, append new items and create missing modules"),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Crate root file (e.g. 'src/lib.rs') or crate directory containing Cargo.toml"),
		),
		mcp.WithString("snippets",
			mcp.Required(),
			mcp.Description("JSON or YAML mapping of qualified item paths (e.g. 'a::b::f') to full item text"),
		),
		mcp.WithBoolean("update_only",
			mcp.Description("Only replace existing items; never insert, delete or create modules"),
		),
		mcp.WithBoolean("dry_run",
			mcp.Description("Plan and diff without writing files"),
		),
	)
	s.AddTool(tool, h.mergeSnippets)
}

// addScanUnsafeTool adds the scan_unsafe tool to the MCP server
func addScanUnsafeTool(s *server.MCPServer, h *handlers) {
	tool := mcp.NewTool(ToolScanUnsafe,
		mcp.WithDescription("Report internal unsafe fns and fns containing unsafe blocks in Rust source"),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Raw text of one Rust source file"),
		),
		mcp.WithString("name",
			mcp.Description("File name used in the report (default: input.rs)"),
		),
	)
	s.AddTool(tool, h.scanUnsafe)
}

func (h *handlers) mergeSnippets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	root, ok := args["root"].(string)
	if !ok || root == "" {
		return mcp.NewToolResultError("root is required"), nil
	}
	doc, ok := args["snippets"].(string)
	if !ok {
		return mcp.NewToolResultError("snippets is required"), nil
	}
	updateOnly, _ := args["update_only"].(bool)
	dryRun, _ := args["dry_run"].(bool)

	rootFile, err := config.ResolveRoot(root)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error resolving crate root: %v", err)), nil
	}
	format, err := snippets.ParseFormat(h.settings.Format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	set, err := snippets.Decode([]byte(doc), format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error decoding snippets: %v", err)), nil
	}

	result, err := h.eng.Merge(ctx, &engine.MergeRequest{
		RootFile:   rootFile,
		Snippets:   set,
		UpdateOnly: updateOnly,
		DryRun:     dryRun,
		Diff:       dryRun,
		IndexFile:  h.settings.IndexFile,
		Extension:  h.settings.Extension,
		Separator:  h.settings.Separator,
	})
	if err != nil {
		if errors.Is(err, engine.ErrConflict) && result != nil {
			content, jsonErr := toJSON(result)
			if jsonErr != nil {
				return nil, jsonErr
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error merging snippets: %v\n%s", err, content)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("Error merging snippets: %v", err)), nil
	}

	content, err := toJSON(result)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(content), nil
}

func (h *handlers) scanUnsafe(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	source, ok := args["source"].(string)
	if !ok {
		return mcp.NewToolResultError("source is required"), nil
	}
	name, _ := args["name"].(string)
	if name == "" {
		name = unsafescan.SingleFileName
	}

	result, err := h.eng.ScanUnsafe(ctx, &engine.ScanRequest{
		Sources: []unsafescan.Source{{Name: name, Text: []byte(source)}},
		Jobs:    1,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error scanning source: %v", err)), nil
	}

	content, err := toJSON(result.Reports)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(content), nil
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(data), nil
}
