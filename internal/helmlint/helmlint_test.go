package helmlint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/scoutflo/devlint/internal/rules"
)

func writeChart(t *testing.T, chartYAML, valuesYAML string, templates map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if chartYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, ChartYAML), []byte(chartYAML), 0o644); err != nil {
			t.Fatalf("write Chart.yaml: %v", err)
		}
	}
	if valuesYAML != "" {
		if err := os.WriteFile(filepath.Join(dir, ValuesYAML), []byte(valuesYAML), 0o644); err != nil {
			t.Fatalf("write values.yaml: %v", err)
		}
	}
	if len(templates) > 0 {
		tplDir := filepath.Join(dir, TemplatesDir)
		if err := os.MkdirAll(tplDir, 0o755); err != nil {
			t.Fatalf("mkdir templates: %v", err)
		}
		for name, content := range templates {
			if err := os.WriteFile(filepath.Join(tplDir, name), []byte(content), 0o644); err != nil {
				t.Fatalf("write template %s: %v", name, err)
			}
		}
	}
	return dir
}

const validChartYAML = `
apiVersion: v2
name: mychart
version: 1.2.3
description: a test chart
maintainers:
  - name: Jane
    email: jane@example.com
`

func TestLintValidChartHasNoStructureErrors(t *testing.T) {
	dir := writeChart(t, validChartYAML, "replicaCount: 1\n", map[string]string{
		"deployment.yaml": "kind: Deployment\n",
	})
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range result.Failures {
		if f.Severity == rules.SeverityError {
			t.Errorf("unexpected error diagnostic: %s: %s", f.Code, f.Message)
		}
	}
}

func TestAPIVersionInvalid(t *testing.T) {
	dir := writeChart(t, "apiVersion: v3\nname: mychart\nversion: 1.0.0\n", "", nil)
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(result, "HL1002") {
		t.Errorf("expected HL1002 for invalid apiVersion, got %+v", codesOf(result))
	}
}

func TestVersionNotSemver(t *testing.T) {
	dir := writeChart(t, "apiVersion: v2\nname: mychart\nversion: not-a-version\n", "", nil)
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(result, "HL1004") {
		t.Errorf("expected HL1004 for invalid version, got %+v", codesOf(result))
	}
}

func TestLibraryChartSuppressesTemplatesDirRule(t *testing.T) {
	dir := writeChart(t, "apiVersion: v2\nname: mychart\nversion: 1.0.0\ntype: library\n", "", nil)
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasCode(result, "HL1009") {
		t.Errorf("expected HL1009 suppressed for library chart, got %+v", codesOf(result))
	}
}

func TestUndefinedInclude(t *testing.T) {
	dir := writeChart(t, validChartYAML, "", map[string]string{
		"deployment.yaml": `kind: Deployment
metadata:
  name: {{ include "mychart.missing" . }}
`,
	})
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(result, "HL3011") {
		t.Errorf("expected HL3011 for undefined include, got %+v", codesOf(result))
	}
}

func TestUnclosedBlock(t *testing.T) {
	dir := writeChart(t, validChartYAML, "", map[string]string{
		"deployment.yaml": `{{ if .Values.enabled }}
kind: Deployment
`,
	})
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(result, "HL3002") {
		t.Errorf("expected HL3002 for unclosed block, got %+v", codesOf(result))
	}
}

func TestHelperWithoutDocComment(t *testing.T) {
	dir := writeChart(t, validChartYAML, "", map[string]string{
		"_helpers.tpl": `{{ define "mychart.name" }}{{ .Chart.Name }}{{ end }}
`,
		"deployment.yaml": `kind: Deployment
metadata:
  name: {{ include "mychart.name" . }}
`,
	})
	result, err := helmlintLint(t, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasCode(result, "HL3005") {
		t.Errorf("expected HL3005 for missing doc comment, got %+v", codesOf(result))
	}
	if hasCode(result, "HL3006") {
		t.Errorf("helper is referenced, should not be flagged unused: %+v", codesOf(result))
	}
}

func helmlintLint(t *testing.T, dir string) (rules.LintResult, error) {
	t.Helper()
	return Lint(dir, rules.NewConfig())
}

func hasCode(result rules.LintResult, code string) bool {
	for _, f := range result.Failures {
		if f.Code == code {
			return true
		}
	}
	return false
}

func codesOf(result rules.LintResult) []string {
	var out []string
	for _, f := range result.Failures {
		out = append(out, f.Code)
	}
	return out
}
