package rules

import (
	"strings"
	"testing"

	"github.com/scoutflo/devlint/internal/position"
)

func TestParsePragmasSuppressesOwnAndNextLine(t *testing.T) {
	lines := strings.Split("image: nginx # ignore: DCL011\nimage: redis\n", "\n")
	set := ParsePragmas(lines)
	if !set.Suppresses(1, "DCL011") {
		t.Errorf("expected line 1 (pragma's own line) to suppress DCL011")
	}
	if !set.Suppresses(2, "DCL011") {
		t.Errorf("expected line 2 (line after pragma) to suppress DCL011")
	}
	if set.Suppresses(3, "DCL011") {
		t.Errorf("line 3 should not be suppressed")
	}
}

func TestParsePragmasAll(t *testing.T) {
	lines := strings.Split("foo: bar # ignore: all\n", "\n")
	set := ParsePragmas(lines)
	if !set.Suppresses(1, "DCL099") {
		t.Errorf("pragma-all must suppress any code")
	}
}

func TestParsePragmasMultipleCodesCaseInsensitive(t *testing.T) {
	lines := strings.Split("foo: bar # ignore: dcl011, DCL003\n", "\n")
	set := ParsePragmas(lines)
	if !set.Suppresses(1, "DCL011") || !set.Suppresses(1, "DCL003") {
		t.Errorf("expected both codes suppressed regardless of case, got %v", set[1])
	}
}

func TestFilterIgnoreRulesBeatsPragma(t *testing.T) {
	cfg := NewConfig()
	cfg.IgnoreRules["DCL011"] = true
	diags := []Diagnostic{
		NewDiagnostic("DCL011", "r", SeverityWarning, CategoryStyle, "msg", "f.yml", position.Position{Line: 1}),
	}
	out := Filter(diags, cfg, PragmaSet{})
	if len(out) != 0 {
		t.Fatalf("ignored rule must be dropped entirely, got %v", out)
	}
}

func TestFilterPragmaSuppression(t *testing.T) {
	cfg := NewConfig()
	pragmas := ParsePragmas(strings.Split("img # ignore: DCL011\n", "\n"))
	diags := []Diagnostic{
		NewDiagnostic("DCL011", "r", SeverityWarning, CategoryStyle, "msg", "f.yml", position.Position{Line: 1}),
	}
	out := Filter(diags, cfg, pragmas)
	if len(out) != 0 {
		t.Fatalf("pragma-suppressed diagnostic must be dropped, got %v", out)
	}
}

func TestFilterDisableIgnorePragma(t *testing.T) {
	cfg := NewConfig()
	cfg.DisableIgnorePragma = true
	pragmas := ParsePragmas(strings.Split("img # ignore: DCL011\n", "\n"))
	diags := []Diagnostic{
		NewDiagnostic("DCL011", "r", SeverityWarning, CategoryStyle, "msg", "f.yml", position.Position{Line: 1}),
	}
	out := Filter(diags, cfg, pragmas)
	if len(out) != 1 {
		t.Fatalf("with DisableIgnorePragma, pragma must not suppress, got %v", out)
	}
}

func TestFilterSeverityOverride(t *testing.T) {
	cfg := NewConfig()
	cfg.SeverityOverrides["DCL011"] = SeverityError
	cfg.FailureThreshold = SeverityError
	diags := []Diagnostic{
		NewDiagnostic("DCL011", "r", SeverityWarning, CategoryStyle, "msg", "f.yml", position.Position{Line: 1}),
	}
	out := Filter(diags, cfg, PragmaSet{})
	if len(out) != 1 || out[0].Severity != SeverityError {
		t.Fatalf("expected severity override to promote to error and survive threshold, got %v", out)
	}
}

// TestThresholdMonotonicity verifies spec §8: if t1 >= t2 in severity, the failure set at t1 is a
// subset of the failure set at t2.
func TestThresholdMonotonicity(t *testing.T) {
	diags := []Diagnostic{
		NewDiagnostic("DCL001", "a", SeverityError, CategoryStyle, "m", "f.yml", position.Position{Line: 1}),
		NewDiagnostic("DCL002", "b", SeverityWarning, CategoryStyle, "m", "f.yml", position.Position{Line: 2}),
		NewDiagnostic("DCL003", "c", SeverityInfo, CategoryStyle, "m", "f.yml", position.Position{Line: 3}),
	}
	cfgHigh := NewConfig()
	cfgHigh.FailureThreshold = SeverityError
	cfgLow := NewConfig()
	cfgLow.FailureThreshold = SeverityInfo

	high := Filter(diags, cfgHigh, PragmaSet{})
	low := Filter(diags, cfgLow, PragmaSet{})

	if len(high) > len(low) {
		t.Fatalf("higher threshold must not produce more results: high=%d low=%d", len(high), len(low))
	}
	lowCodes := map[string]bool{}
	for _, d := range low {
		lowCodes[d.Code] = true
	}
	for _, d := range high {
		if !lowCodes[d.Code] {
			t.Errorf("code %s present at high threshold but absent at low threshold", d.Code)
		}
	}
}

func TestApplyFixesSequentialAndIdempotent(t *testing.T) {
	upper := func(s string) (string, bool) {
		u := strings.ToUpper(s)
		if u == s {
			return s, false
		}
		return u, true
	}
	trim := func(s string) (string, bool) {
		t := strings.TrimSpace(s)
		if t == s {
			return s, false
		}
		return t, true
	}
	fixes := []NamedFix{{Code: "F1", Fix: trim}, {Code: "F2", Fix: upper}}

	result, changedBy := ApplyFixes("  hello  ", fixes)
	if result != "HELLO" {
		t.Fatalf("expected sequential application to produce HELLO, got %q", result)
	}
	if len(changedBy) != 2 {
		t.Fatalf("expected both fixes to report a change, got %v", changedBy)
	}

	result2, changedBy2 := ApplyFixes(result, fixes)
	if result2 != result {
		t.Fatalf("idempotence: re-running fixes on fixed output must not change it, got %q", result2)
	}
	if len(changedBy2) != 0 {
		t.Fatalf("idempotence: re-running fixes on conformant source must report no changes, got %v", changedBy2)
	}
}

func TestValidCode(t *testing.T) {
	cases := map[string]bool{
		"DCL011":  true,
		"HL3002":  true,
		"DL3059":  true,
		"META001": false,
		"dcl011":  false,
		"DCL11":   false,
		"DCLONE1": false,
	}
	for code, want := range cases {
		if got := ValidCode(code); got != want {
			t.Errorf("ValidCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestDiagnosticPriority(t *testing.T) {
	cases := []struct {
		sev  Severity
		cat  Category
		want string
	}{
		{SeverityError, CategorySecurity, "critical"},
		{SeverityError, CategoryStyle, "high"},
		{SeverityWarning, CategorySecurity, "high"},
		{SeverityWarning, CategoryTemplate, "high"},
		{SeverityWarning, CategoryStyle, "medium"},
		{SeverityInfo, CategoryStyle, "low"},
		{SeverityStyle, CategoryStyle, "low"},
	}
	for _, c := range cases {
		d := NewDiagnostic("DCL001", "r", c.sev, c.cat, "m", "f.yml", position.Position{Line: 1})
		if got := d.Priority(); got != c.want {
			t.Errorf("Priority(%v,%v) = %q, want %q", c.sev, c.cat, got, c.want)
		}
	}
}

func TestSortDiagnosticsFileThenLineThenColumn(t *testing.T) {
	diags := []Diagnostic{
		NewDiagnostic("B", "r", SeverityWarning, CategoryStyle, "m", "b.yml", position.Position{Line: 1, Column: 1}),
		NewDiagnostic("A2", "r", SeverityWarning, CategoryStyle, "m", "a.yml", position.Position{Line: 2, Column: 1}),
		NewDiagnostic("A1", "r", SeverityWarning, CategoryStyle, "m", "a.yml", position.Position{Line: 1, Column: 5}),
		NewDiagnostic("A0", "r", SeverityWarning, CategoryStyle, "m", "a.yml", position.Position{Line: 1, Column: 2}),
	}
	SortDiagnostics(diags)
	order := []string{"A0", "A1", "A2", "B"}
	for i, code := range order {
		if diags[i].Code != code {
			t.Fatalf("position %d: got %s, want %s (full order: %v)", i, diags[i].Code, code, diags)
		}
	}
}

func TestParseSeverityUnknownDefaultsToWarning(t *testing.T) {
	sev, ok := ParseSeverity("bogus")
	if ok {
		t.Fatalf("expected ok=false for unrecognized severity")
	}
	if sev != SeverityWarning {
		t.Fatalf("expected fallback to SeverityWarning, got %v", sev)
	}
}

func TestSeverityOrdering(t *testing.T) {
	if !(SeverityError > SeverityWarning && SeverityWarning > SeverityInfo && SeverityInfo > SeverityStyle && SeverityStyle > SeverityIgnore) {
		t.Fatalf("severity rank ordering must be Error > Warning > Info > Style > Ignore")
	}
}
