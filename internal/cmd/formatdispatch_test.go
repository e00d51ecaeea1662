package cmd

import (
	"strings"
	"testing"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

func sampleResult() rules.LintResult {
	result := rules.LintResult{
		Failures: []rules.Diagnostic{
			rules.NewDiagnostic("DCL001", "no-explicit-tag", rules.SeverityWarning, rules.CategoryBestPractice,
				"service \"web\" uses an unpinned image tag", "docker-compose.yml", position.Position{Line: 3, Column: 5}),
		},
		FilesChecked: 1,
		ChecksRun:    1,
	}
	result.Finalize()
	return result
}

func TestRenderLintResultKnownFormats(t *testing.T) {
	result := sampleResult()
	for _, format := range []string{"", "table", "json", "sarif", "checkstyle", "codeclimate", "gcc"} {
		out, err := renderLintResult(result, format, "dclint")
		if err != nil {
			t.Errorf("renderLintResult(%q) returned error: %v", format, err)
			continue
		}
		if len(out) == 0 {
			t.Errorf("renderLintResult(%q) returned empty output", format)
		}
	}
}

func TestRenderLintResultUnknownFormat(t *testing.T) {
	_, err := renderLintResult(sampleResult(), "yaml", "dclint")
	if err == nil {
		t.Fatalf("expected error for unsupported --format")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("error message %q should mention the offending format", err.Error())
	}
}
