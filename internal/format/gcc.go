package format

import (
	"fmt"
	"strings"

	"github.com/scoutflo/devlint/internal/rules"
)

// GCC renders a LintResult as GNU gcc-style lines: path:line[:col]: severity: msg [code] (spec §6).
func GCC(result rules.LintResult) string {
	var b strings.Builder
	for _, d := range result.Failures {
		if d.Column > 0 {
			fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n", d.FilePath, d.Line, d.Column, d.Severity, d.Message, d.Code)
		} else {
			fmt.Fprintf(&b, "%s:%d: %s: %s [%s]\n", d.FilePath, d.Line, d.Severity, d.Message, d.Code)
		}
	}
	return b.String()
}
