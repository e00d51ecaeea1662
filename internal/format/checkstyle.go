package format

import (
	"encoding/xml"

	"github.com/scoutflo/devlint/internal/rules"
)

// checkstyleSeverity maps a devlint severity onto Checkstyle's {error, warning, info} vocabulary,
// folding Style down to info since Checkstyle has no fifth rank.
func checkstyleSeverity(s rules.Severity) string {
	switch s {
	case rules.SeverityError:
		return "error"
	case rules.SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

type checkstyleError struct {
	XMLName  xml.Name `xml:"error"`
	Line     int      `xml:"line,attr"`
	Column   int      `xml:"column,attr,omitempty"`
	Severity string   `xml:"severity,attr"`
	Message  string   `xml:"message,attr"`
	Source   string   `xml:"source,attr"`
}

type checkstyleFile struct {
	XMLName xml.Name          `xml:"file"`
	Name    string            `xml:"name,attr"`
	Errors  []checkstyleError `xml:"error"`
}

type checkstyleRoot struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

// Checkstyle renders a LintResult as Checkstyle XML, grouping diagnostics by file in the order
// they already appear (LintResult.Finalize has sorted by file then position).
func Checkstyle(result rules.LintResult) ([]byte, error) {
	root := checkstyleRoot{Version: "4.3"}
	var current *checkstyleFile
	for _, d := range result.Failures {
		if current == nil || current.Name != d.FilePath {
			root.Files = append(root.Files, checkstyleFile{Name: d.FilePath})
			current = &root.Files[len(root.Files)-1]
		}
		current.Errors = append(current.Errors, checkstyleError{
			Line: d.Line, Column: d.Column, Severity: checkstyleSeverity(d.Severity),
			Message: d.Message, Source: d.Code,
		})
	}
	body, err := xml.MarshalIndent(root, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
