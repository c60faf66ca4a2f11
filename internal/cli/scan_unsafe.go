package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/rsmerge/internal/engine"
	"github.com/danieljhkim/rsmerge/internal/unsafescan"
)

var (
	scanSingleFile bool
	scanMsgpack    bool
)

var scanUnsafeCmd = &cobra.Command{
	Use:   "scan-unsafe [files|globs...]",
	Short: "Report unsafe fns and fns containing unsafe blocks",
	Long: `Scan Rust source files for unsafe code.

For each file, prints the unsafe fns that are not exported through
#[no_mangle] or #[export_name], and the fns that contain an unsafe block.
The output is one JSON object mapping file names to reports.

Input is taken from the named files and doublestar globs, from a msgpack map
of file name to text on stdin (--msgpack), or from one file's text on stdin
(--single-file, reported as input.rs).

Examples:
  rsmerge scan-unsafe 'src/**/*.rs'
  rsmerge scan-unsafe --single-file < src/lib.rs
  rsmerge scan-unsafe --msgpack --jobs 8 < files.msgpack`,
	RunE: runScanUnsafe,
}

func init() {
	scanUnsafeCmd.Flags().BoolVar(&scanSingleFile, "single-file", false, "Read one file's text from stdin")
	scanUnsafeCmd.Flags().BoolVar(&scanMsgpack, "msgpack", false, "Read a msgpack map of file name to text from stdin")
	scanUnsafeCmd.Flags().Int("jobs", 0, "Number of files scanned in parallel (default: number of CPUs)")
	scanUnsafeCmd.MarkFlagsMutuallyExclusive("single-file", "msgpack")
}

func runScanUnsafe(cmd *cobra.Command, args []string) error {
	sources, err := readScanSources(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	eng := newEngine()
	result, err := eng.ScanUnsafe(cmd.Context(), &engine.ScanRequest{
		Sources: sources,
		Jobs:    currentSettings().Jobs,
	})
	if err != nil {
		return err
	}
	logger.Debug("scanned sources", "files", len(result.Reports), "elapsed", result.Elapsed)

	data, err := json.Marshal(result.Reports)
	if err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}

func readScanSources(stdin io.Reader, args []string) ([]unsafescan.Source, error) {
	switch {
	case (scanSingleFile || scanMsgpack) && len(args) > 0:
		return nil, errors.New("file arguments cannot be combined with --single-file or --msgpack")
	case scanSingleFile:
		return unsafescan.ReadSingle(stdin)
	case scanMsgpack:
		return unsafescan.DecodeMsgpack(stdin)
	case len(args) > 0:
		return unsafescan.LoadFiles(args)
	case stdinIsPipe():
		return unsafescan.ReadSingle(stdin)
	default:
		return nil, errors.New("no input: pass files or globs, or pipe source to stdin")
	}
}
