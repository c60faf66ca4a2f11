package cli

import (
	"github.com/spf13/cobra"

	"github.com/danieljhkim/rsmerge/internal/config"
	"github.com/danieljhkim/rsmerge/internal/mcptools"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Serve merge and scan tools over MCP on stdio",
	Long: `Run a Model Context Protocol server on stdin and stdout.

Tools:
  merge_snippets  Merge item snippets into a crate
  scan_unsafe     Report unsafe usage in one source file

Merge defaults (index file, extension, snippet format) come from the same
settings as the CLI.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := mcptools.NewServer(newEngine(), mcptools.Options{
			Name:     config.AppName,
			Version:  cmd.Root().Version,
			Settings: currentSettings(),
		})
		logger.Info("serving MCP on stdio")
		return mcptools.ServeStdio(s)
	},
}
