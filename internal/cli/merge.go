package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rsmerge/internal/config"
	"github.com/danieljhkim/rsmerge/internal/engine"
	"github.com/danieljhkim/rsmerge/internal/snippets"
)

var (
	mergeUpdateOnly bool
	mergeDryRun     bool
	mergeDiff       bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge <root> <snippets>",
	Short: "Merge item snippets into a crate",
	Long: `Merge a set of item snippets into the crate rooted at <root>.

<root> is a crate root file (src/lib.rs) or a directory containing Cargo.toml.
<snippets> is a JSON or YAML file mapping qualified item paths to item text;
use "-" to read it from stdin.

Items present in the crate and in the snippets are replaced. Items present only
in the crate are deleted. Items present only in the snippets are appended to
their module, creating module files as needed. Nothing is written when a
conflict is detected.

Examples:
  rsmerge merge . snippets.json
  rsmerge merge src/lib.rs snippets.yaml --dry-run --diff
  generate-snippets | rsmerge merge . - --update-only`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().BoolVar(&mergeUpdateOnly, "update-only", false, "Only replace existing items")
	mergeCmd.Flags().BoolVar(&mergeDryRun, "dry-run", false, "Show what would change without writing")
	mergeCmd.Flags().BoolVar(&mergeDiff, "diff", false, "Print a unified diff of every changed file")
	mergeCmd.Flags().String("format", "auto", "Snippet format (auto, json, yaml)")
}

func runMerge(cmd *cobra.Command, args []string) error {
	s := currentSettings()

	rootFile, err := config.ResolveRoot(args[0])
	if err != nil {
		return err
	}
	set, err := loadSnippets(args[1], s.Format, cmd.InOrStdin())
	if err != nil {
		return err
	}

	eng := newEngine()
	result, err := eng.Merge(cmd.Context(), &engine.MergeRequest{
		RootFile:   rootFile,
		Snippets:   set,
		UpdateOnly: mergeUpdateOnly,
		DryRun:     mergeDryRun,
		Diff:       mergeDiff,
		IndexFile:  s.IndexFile,
		Extension:  s.Extension,
		Separator:  s.Separator,
	})
	out := cmd.OutOrStdout()
	if err != nil {
		if errors.Is(err, engine.ErrConflict) && result != nil {
			if jsonOutput {
				_ = outputJSON(out, result)
			} else {
				printConflicts(out, result)
			}
		}
		return err
	}

	if jsonOutput {
		return outputJSON(out, result)
	}
	printMergeResult(out, result, mergeDiff)
	return nil
}

// loadSnippets reads the snippet document from path, or from stdin for "-".
func loadSnippets(path, format string, stdin io.Reader) (*snippets.Set, error) {
	f, err := snippets.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if path != "-" {
		return snippets.Load(path, f)
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read snippets from stdin: %w", err)
	}
	return snippets.Decode(data, f)
}

func printConflicts(w io.Writer, result *engine.MergeResult) {
	printSection(w, "Conflicts Detected")
	rows := make([][]string, 0, len(result.Conflicts))
	for _, c := range result.Conflicts {
		rows = append(rows, []string{c.Path, c.Reason})
	}
	printTable(w, []string{"PATH", "REASON"}, rows)
	_, _ = fmt.Fprintln(w)
	printWarning(w, "No files were written")
}

func printMergeResult(w io.Writer, result *engine.MergeResult, showDiff bool) {
	if showDiff {
		for _, f := range result.Files {
			if f.Diff != "" {
				printDiff(w, f.Diff)
			}
		}
	}

	if !result.Changed() {
		_, _ = fmt.Fprintln(w, "Already up to date")
		return
	}

	summary := fmt.Sprintf("%s replaced, %s deleted, %s inserted, %s created",
		countNoun(result.Replaced, "item", "items"),
		countNoun(result.Deleted, "item", "items"),
		countNoun(result.Inserted, "item", "items"),
		countNoun(result.Created, "file", "files"),
	)

	if result.DryRun {
		printSection(w, "Dry Run")
		var rows [][]string
		for _, f := range result.Files {
			if !f.Changed {
				continue
			}
			status := "modified"
			if f.Created {
				status = "created"
			}
			rows = append(rows, []string{f.RelPath, status, strconv.Itoa(f.Rewrites)})
		}
		printTable(w, []string{"FILE", "STATUS", "REWRITES"}, rows)
		_, _ = fmt.Fprintln(w)
		printLabelValue(w, "Would apply", summary)
		return
	}

	printSuccess(w, "Merged snippets: "+summary)

	written := make(map[string]bool, len(result.Written))
	for _, path := range result.Written {
		written[path] = true
	}
	var files []string
	for _, f := range result.Files {
		if written[f.Path] {
			files = append(files, f.RelPath)
		}
	}
	printFileList(w, "Written:", files)
	_, _ = dimColor.Fprintf(w, "  %s in %s\n", countNoun(result.Modules, "module", "modules"), result.Elapsed)
}
