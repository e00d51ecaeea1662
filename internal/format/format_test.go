package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

func sampleResult() rules.LintResult {
	d1 := rules.NewDiagnostic("KL4001", "privileged", rules.SeverityError, rules.CategorySecurity, "container runs privileged", "pod.yaml", position.Position{Line: 5, Column: 3})
	d1.Remediation = "drop privileged"
	d2 := rules.NewDiagnostic("DCL002", "naming", rules.SeverityWarning, rules.CategoryStyle, "service name should be kebab-case", "compose.yaml", position.Position{Line: 2})
	result := rules.LintResult{Failures: []rules.Diagnostic{d1, d2}, FilesChecked: 2, ChecksRun: 10}
	result.Finalize()
	return result
}

func TestJSONRoundTrips(t *testing.T) {
	out, err := JSON(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	findings, ok := decoded["findings"].([]interface{})
	if !ok || len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %v", decoded["findings"])
	}
}

func TestGCCFormatsOnePerLine(t *testing.T) {
	out := GCC(sampleResult())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	// Finalize sorts by file path, so compose.yaml comes first and pod.yaml second.
	if !strings.Contains(lines[1], "pod.yaml:5:3:") {
		t.Errorf("expected file:line:col prefix, got %q", lines[1])
	}
	if !strings.Contains(lines[1], "[KL4001]") {
		t.Errorf("expected rule code suffix, got %q", lines[1])
	}
}

func TestCheckstyleGroupsByFile(t *testing.T) {
	out, err := Checkstyle(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `name="pod.yaml"`) || !strings.Contains(s, `name="compose.yaml"`) {
		t.Errorf("expected both files present, got %s", s)
	}
	if !strings.Contains(s, `severity="error"`) {
		t.Errorf("expected error severity, got %s", s)
	}
}

func TestSARIFHasOneRunAndDedupedRules(t *testing.T) {
	out, err := SARIF("devlint", sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var log sarifLog
	if err := json.Unmarshal(out, &log); err != nil {
		t.Fatalf("invalid SARIF JSON: %v", err)
	}
	if log.Version != "2.1.0" {
		t.Errorf("expected version 2.1.0, got %s", log.Version)
	}
	if len(log.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(log.Runs))
	}
	if len(log.Runs[0].Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(log.Runs[0].Results))
	}
	if len(log.Runs[0].Tool.Driver.Rules) != 2 {
		t.Errorf("expected 2 catalog rules, got %d", len(log.Runs[0].Tool.Driver.Rules))
	}
}

func TestCodeClimateFingerprintsAreStable(t *testing.T) {
	out1, err := CodeClimate(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := CodeClimate(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out1) != string(out2) {
		t.Errorf("expected deterministic fingerprints across identical runs")
	}
	var issues []codeClimateIssue
	if err := json.Unmarshal(out1, &issues); err != nil {
		t.Fatalf("invalid CodeClimate JSON: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}
	if issues[0].Fingerprint == issues[1].Fingerprint {
		t.Errorf("expected distinct fingerprints for distinct findings")
	}
}

func TestTTYReportsNoFindings(t *testing.T) {
	empty := rules.LintResult{}
	out := TTY(empty, false)
	if !strings.Contains(out, "no findings") {
		t.Errorf("expected 'no findings', got %q", out)
	}
}

func TestTTYListsEveryFinding(t *testing.T) {
	out := TTY(sampleResult(), false)
	if !strings.Contains(out, "KL4001") || !strings.Contains(out, "DCL002") {
		t.Errorf("expected both codes present, got %q", out)
	}
	if strings.Contains(out, ansiRed) {
		t.Errorf("did not expect ANSI color codes when color=false")
	}
}

func TestTTYColorsSeverity(t *testing.T) {
	out := TTY(sampleResult(), true)
	if !strings.Contains(out, ansiRed) {
		t.Errorf("expected ANSI red for error severity when color=true")
	}
}
