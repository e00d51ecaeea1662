package format

import (
	"fmt"
	"strings"

	"github.com/liggitt/tabwriter"

	"github.com/scoutflo/devlint/internal/rules"
)

// ansi color codes for severity-colored TTY output; disabled entirely when color is false so piped
// output (CI logs, redirected files) stays plain.
const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiGray   = "\x1b[90m"
)

func severityColor(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return ansiRed
	case rules.SeverityWarning:
		return ansiYellow
	case rules.SeverityInfo:
		return ansiCyan
	default:
		return ansiGray
	}
}

// TTY renders a LintResult as a column-aligned table via liggitt/tabwriter (the same tab-aligned
// writer client-go's printers use for `kubectl get`-style output), with optional ANSI severity
// coloring. Columns are padded with spaces; no box-drawing borders are emitted.
func TTY(result rules.LintResult, color bool) string {
	var b strings.Builder
	if len(result.Failures) == 0 {
		fmt.Fprintln(&b, "no findings")
		return b.String()
	}

	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tLINE\tCOL\tSEVERITY\tCODE\tMESSAGE")
	for _, d := range result.Failures {
		sev := d.Severity.String()
		if color {
			sev = severityColor(d.Severity) + sev + ansiReset
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\n", d.FilePath, d.Line, d.Column, sev, d.Code, d.Message)
	}
	w.Flush()

	fmt.Fprintf(&b, "\n%d error(s), %d warning(s) across %d file(s)\n", result.ErrorCount(), result.WarningCount(), result.FilesChecked)
	return b.String()
}
