package cmd

import (
	"fmt"

	"github.com/scoutflo/devlint/internal/format"
	"github.com/scoutflo/devlint/internal/rules"
)

// renderLintResult dispatches to the requested formatter by name (spec §6: table/json/sarif/
// checkstyle/codeclimate/gcc). "table" is the default TTY renderer; color is enabled only for the
// table format since the other formats are machine-consumed.
func renderLintResult(result rules.LintResult, formatName, toolName string) ([]byte, error) {
	switch formatName {
	case "", "table":
		return []byte(format.TTY(result, true)), nil
	case "json":
		return format.JSON(result)
	case "sarif":
		return format.SARIF(toolName, result)
	case "checkstyle":
		return format.Checkstyle(result)
	case "codeclimate":
		return format.CodeClimate(result)
	case "gcc":
		return []byte(format.GCC(result)), nil
	default:
		return nil, fmt.Errorf("unknown --format %q (want table|json|sarif|checkstyle|codeclimate|gcc)", formatName)
	}
}
