package format

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/scoutflo/devlint/internal/rules"
)

// codeClimateSeverity maps a devlint severity onto CodeClimate's {info, minor, major, critical,
// blocker} vocabulary.
func codeClimateSeverity(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return "blocker"
	case rules.SeverityWarning:
		return "major"
	case rules.SeverityInfo:
		return "minor"
	default:
		return "info"
	}
}

type codeClimateIssue struct {
	Type        string                 `json:"type"`
	CheckName   string                 `json:"check_name"`
	Description string                 `json:"description"`
	Categories  []string               `json:"categories"`
	Severity    string                 `json:"severity"`
	Fingerprint string                 `json:"fingerprint"`
	Location    codeClimateLocation    `json:"location"`
}

type codeClimateLocation struct {
	Path  string             `json:"path"`
	Lines codeClimateLineSpan `json:"lines"`
}

type codeClimateLineSpan struct {
	Begin int `json:"begin"`
}

// CodeClimate renders a LintResult as a CodeClimate JSON issues array, one object per diagnostic.
// The fingerprint is a content hash of (code, file, line, message) so the same finding produces a
// stable ID across runs, the property CodeClimate consumers rely on for diff-based suppression.
func CodeClimate(result rules.LintResult) ([]byte, error) {
	issues := make([]codeClimateIssue, 0, len(result.Failures))
	for _, d := range result.Failures {
		issues = append(issues, codeClimateIssue{
			Type: "issue", CheckName: d.Code, Description: d.Message,
			Categories: []string{string(d.Category)}, Severity: codeClimateSeverity(d.Severity),
			Fingerprint: fingerprint(d), Location: codeClimateLocation{Path: d.FilePath, Lines: codeClimateLineSpan{Begin: max(d.Line, 1)}},
		})
	}
	return json.MarshalIndent(issues, "", "  ")
}

func fingerprint(d rules.Diagnostic) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d|%s", d.Code, d.FilePath, d.Line, d.Message)))
	return hex.EncodeToString(h[:])
}
