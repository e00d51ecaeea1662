package rules

import (
	"regexp"
	"sort"

	"github.com/scoutflo/devlint/internal/position"
)

// codePattern matches the canonical rule code shape from the GLOSSARY: [A-Z]{2,3}\d{3,4}.
var codePattern = regexp.MustCompile(`^[A-Z]{2,3}\d{3,4}$`)

// ValidCode reports whether code matches the canonical rule-code pattern.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Diagnostic is a single finding emitted by a rule (the "CheckFailure" of spec §3).
type Diagnostic struct {
	Code        string            `json:"code"`
	RuleName    string            `json:"ruleName"`
	Severity    Severity          `json:"severity"`
	Category    Category          `json:"category"`
	Message     string            `json:"message"`
	FilePath    string            `json:"file"`
	Line        int               `json:"line"`
	Column      int               `json:"column"`
	Fixable     bool              `json:"fixable"`
	Remediation string            `json:"remediation,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// NewDiagnostic builds a Diagnostic from rule metadata and a source position.
func NewDiagnostic(code, ruleName string, sev Severity, cat Category, message, filePath string, pos position.Position) Diagnostic {
	return Diagnostic{
		Code:     code,
		RuleName: ruleName,
		Severity: sev,
		Category: cat,
		Message:  message,
		FilePath: filePath,
		Line:     pos.Line,
		Column:   pos.Column,
	}
}

// Priority buckets a diagnostic into the action-plan priorities from spec §4.9.
func (d Diagnostic) Priority() string {
	switch {
	case d.Severity == SeverityError && d.Category == CategorySecurity:
		return "critical"
	case d.Severity == SeverityError:
		return "high"
	case d.Severity == SeverityWarning && d.Category == CategorySecurity:
		return "high"
	case d.Severity == SeverityWarning && d.Category == CategoryTemplate:
		return "high"
	case d.Severity == SeverityWarning:
		return "medium"
	default:
		return "low"
	}
}

// SortDiagnostics orders failures first by file path, then ascending (line, column), stable with
// respect to rule registration order on ties (spec §3 LintResult ordering, spec §5 ordering
// guarantees).
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// LintResult is the accumulated output of a single lint invocation across all files checked.
type LintResult struct {
	Failures    []Diagnostic `json:"failures"`
	ParseErrors []string     `json:"parseErrors,omitempty"`
	FilesChecked int         `json:"filesChecked"`
	ChecksRun    int         `json:"checksRun"`
}

// ErrorCount returns the number of SeverityError failures.
func (r *LintResult) ErrorCount() int { return r.countAt(SeverityError) }

// WarningCount returns the number of SeverityWarning failures.
func (r *LintResult) WarningCount() int { return r.countAt(SeverityWarning) }

func (r *LintResult) countAt(sev Severity) int {
	n := 0
	for _, f := range r.Failures {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

// Finalize sorts failures in-place, preserving the ordering guarantee documented on SortDiagnostics.
func (r *LintResult) Finalize() {
	SortDiagnostics(r.Failures)
}
