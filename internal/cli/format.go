package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// fatih/color disables these when stdout is not a TTY or NO_COLOR is set
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
	labelColor   = color.New(color.FgWhite, color.Bold)
	dimColor     = color.New(color.FgHiBlack)

	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
)

// printSection writes a section header surrounded by blank lines.
func printSection(w io.Writer, title string) {
	_, _ = fmt.Fprintln(w)
	_, _ = headerColor.Fprintf(w, "▸ %s\n", title)
	_, _ = fmt.Fprintln(w)
}

func printSuccess(w io.Writer, msg string) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", msg)
}

func printWarning(w io.Writer, msg string) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", msg)
}

func printError(w io.Writer, msg string) {
	_, _ = errorColor.Fprintf(w, "✗ %s\n", msg)
}

// printLabelValue writes an indented "label: value" line.
func printLabelValue(w io.Writer, label, value string) {
	_, _ = labelColor.Fprintf(w, "  %s: ", label)
	_, _ = fmt.Fprintln(w, value)
}

// printFileList writes one bulleted line per file under a heading.
func printFileList(w io.Writer, heading string, files []string) {
	if len(files) == 0 {
		return
	}
	_, _ = infoColor.Fprintf(w, "  %s\n", heading)
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "    • %s\n", f)
	}
}

// printTable writes rows in aligned columns under a header and a rule.
func printTable(w io.Writer, headers []string, rows [][]string) {
	if len(headers) == 0 || len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	cells := func(row []string, c *color.Color) string {
		var b strings.Builder
		b.WriteString("  ")
		for i := range widths {
			if i > 0 {
				b.WriteString("  ")
			}
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == len(widths)-1 {
				b.WriteString(c.Sprint(cell))
			} else {
				b.WriteString(c.Sprintf("%-*s", widths[i], cell))
			}
		}
		return b.String()
	}

	rule := make([]string, len(widths))
	for i, n := range widths {
		rule[i] = strings.Repeat("-", n)
	}

	_, _ = fmt.Fprintln(w, cells(headers, headerColor))
	_, _ = fmt.Fprintln(w, "  "+strings.Join(rule, "  "))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, cells(row, dimColor))
	}
}

// printDiff writes a unified diff, coloring added and removed lines.
func printDiff(w io.Writer, diff string) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, _ = labelColor.Fprint(w, line)
		case strings.HasPrefix(line, "@@"):
			_, _ = infoColor.Fprint(w, line)
		case strings.HasPrefix(line, "+"):
			_, _ = addedColor.Fprint(w, line)
		case strings.HasPrefix(line, "-"):
			_, _ = removedColor.Fprint(w, line)
		default:
			_, _ = fmt.Fprint(w, line)
		}
	}
}

// countNoun formats a count with the singular or plural noun.
func countNoun(count int, singular, plural string) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}
