package dcl

import (
	"testing"

	"github.com/scoutflo/devlint/internal/rules"
)

func codes(result rules.LintResult) map[string]int {
	out := map[string]int{}
	for _, d := range result.Failures {
		out[d.Code]++
	}
	return out
}

func TestLintExplicitTag(t *testing.T) {
	src := `
services:
  web:
    image: nginx
  db:
    image: postgres:latest
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(result)
	if got["DCL011"] != 2 {
		t.Errorf("DCL011 count = %d, want 2 (got %v)", got["DCL011"], got)
	}
}

func TestLintDuplicatePorts(t *testing.T) {
	src := `
services:
  web:
    image: nginx:1.25
    ports:
      - "8080:80"
  api:
    image: nginx:1.25
    ports:
      - "8080:3000"
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(result)
	if got["DCL003"] != 2 {
		t.Errorf("DCL003 count = %d, want 2 (got %v)", got["DCL003"], got)
	}
}

func TestLintBuildAndImageWithoutPullPolicy(t *testing.T) {
	src := `
services:
  web:
    build: ./web
    image: myorg/web:1.0
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes(result)["DCL001"] != 1 {
		t.Errorf("expected one DCL001 diagnostic, got %v", codes(result))
	}
}

func TestLintBuildAndImageWithPullPolicyIsFine(t *testing.T) {
	src := `
services:
  web:
    build: ./web
    image: myorg/web:1.0
    pull_policy: build
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes(result)["DCL001"] != 0 {
		t.Errorf("expected no DCL001 diagnostic when pull_policy set, got %v", codes(result))
	}
}

func TestLintDependsOnMissingService(t *testing.T) {
	src := `
services:
  web:
    image: nginx:1.25
    depends_on:
      - db
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if codes(result)["DCL012"] != 1 {
		t.Errorf("expected one DCL012 diagnostic, got %v", codes(result))
	}
}

func TestLintThresholdFiltersStyleDiagnostics(t *testing.T) {
	src := `
services:
  Web:
    image: nginx:1.25
`
	cfg := rules.NewConfig()
	cfg.FailureThreshold = rules.SeverityWarning
	result, err := Lint(src, "docker-compose.yml", cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, d := range result.Failures {
		if d.Severity < rules.SeverityWarning {
			t.Errorf("found diagnostic %s below threshold: %+v", d.Code, d)
		}
	}
}

func TestFixPortsCanonicalOrder(t *testing.T) {
	src := `services:
  web:
    image: nginx:1.25
    ports:
      - "9090:90"
      - "8080:80"
`
	result, err := Lint(src, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fixed, changedBy := Fix(src, result)
	if len(changedBy) == 0 {
		t.Fatalf("expected DCL013 fix to apply, changedBy = %v", changedBy)
	}

	refixed, err := Lint(fixed, "docker-compose.yml", rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error on refixed source: %v", err)
	}
	if codes(refixed)["DCL013"] != 0 {
		t.Errorf("expected DCL013 to be resolved after fix, got %v", codes(refixed))
	}
}

func TestLintEmptyFileIsParseError(t *testing.T) {
	_, err := Lint("   ", "docker-compose.yml", rules.NewConfig())
	if err == nil {
		t.Fatalf("expected error for empty compose file")
	}
}
