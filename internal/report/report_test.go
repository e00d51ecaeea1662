package report

import (
	"testing"

	"github.com/scoutflo/devlint/internal/optimize/live"
	"github.com/scoutflo/devlint/internal/optimize/static"
	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

func staticRec(namespace, workload, container string) static.ResourceRecommendation {
	return static.ResourceRecommendation{
		Namespace:    namespace,
		ResourceName: workload,
		Container:    container,
		WorkloadType: "Deployment",
		Issue:        "container has no CPU request",
		Severity:     rules.SeverityError,
		RuleCode:     static.RuleNoCPURequest,
		Recommended:  static.ResourceSpec{CPUMillicores: 100, MemoryBytes: 128 * 1024 * 1024},
		FixYAML:      "resources:\n",
	}
}

func liveRec(namespace, workload, container string, confidence int) live.LiveRecommendation {
	return live.LiveRecommendation{
		Namespace: namespace, WorkloadName: workload, ContainerName: container,
		DataSource:               live.SourcePrometheus,
		RecommendedCPUMillicores: 360,
		RecommendedMemoryBytes:   616 * 1024 * 1024,
		Confidence:               confidence,
		Severity:                 rules.SeverityWarning,
		FixYAML:                  "resources:\n",
	}
}

func TestDedupeCorroboratesMatchingKey(t *testing.T) {
	b := NewBuilder("/charts")
	b.AddStaticRecommendations([]static.ResourceRecommendation{staticRec("default", "web", "app")})
	b.AddLiveRecommendations([]live.LiveRecommendation{liveRec("default", "web", "app", 70)}, live.SourcePrometheus)

	report := b.Build(0, "2026-07-31T00:00:00Z", "test")
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected 1 merged recommendation, got %d: %+v", len(report.Recommendations), report.Recommendations)
	}
	rec := report.Recommendations[0]
	if rec.Source != SourceCorroborated {
		t.Errorf("expected Corroborated source, got %s", rec.Source)
	}
	if rec.Confidence != 80 {
		t.Errorf("expected confidence 70+10=80, got %d", rec.Confidence)
	}
	if rec.RecommendedCPUMillicores != 360 {
		t.Errorf("expected live value to win, got %d", rec.RecommendedCPUMillicores)
	}
	if report.Summary.DuplicatesRemoved != 1 {
		t.Errorf("expected duplicates_removed = 1, got %d", report.Summary.DuplicatesRemoved)
	}
}

func TestDedupeKeepsDisjointKeysSeparate(t *testing.T) {
	b := NewBuilder("/charts")
	b.AddStaticRecommendations([]static.ResourceRecommendation{staticRec("default", "web", "app")})
	b.AddLiveRecommendations([]live.LiveRecommendation{liveRec("default", "worker", "app", 60)}, live.SourcePrometheus)

	report := b.Build(0, "2026-07-31T00:00:00Z", "test")
	if len(report.Recommendations) != 2 {
		t.Fatalf("expected 2 distinct recommendations, got %d", len(report.Recommendations))
	}
	for _, rec := range report.Recommendations {
		if rec.Source == SourceCorroborated {
			t.Errorf("did not expect Corroborated for disjoint keys: %+v", rec)
		}
	}
	if report.Summary.DuplicatesRemoved != 0 {
		t.Errorf("expected duplicates_removed = 0, got %d", report.Summary.DuplicatesRemoved)
	}
}

func TestDedupeStaticOnlyRetainsConfidence50(t *testing.T) {
	b := NewBuilder("/charts")
	b.AddStaticRecommendations([]static.ResourceRecommendation{staticRec("default", "web", "app")})
	report := b.Build(0, "", "test")
	if len(report.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation, got %d", len(report.Recommendations))
	}
	if report.Recommendations[0].Source != SourceStaticOnly {
		t.Errorf("expected StaticOnly, got %s", report.Recommendations[0].Source)
	}
	if report.Recommendations[0].Confidence != 50 {
		t.Errorf("expected confidence 50, got %d", report.Recommendations[0].Confidence)
	}
}

func TestHealthScoreBounds(t *testing.T) {
	b := NewBuilder("/charts")
	for i := 0; i < 3; i++ {
		b.AddLintResult(rules.LintResult{
			Failures: []rules.Diagnostic{
				rules.NewDiagnostic("KL4001", "privileged", rules.SeverityError, rules.CategorySecurity, "bad", "f.yaml", position.Position{Line: 1}),
			},
			FilesChecked: 1, ChecksRun: 1,
		})
	}
	report := b.Build(0, "", "test")
	if report.Summary.HealthScore < 0 || report.Summary.HealthScore > 100 {
		t.Fatalf("health score out of bounds: %d", report.Summary.HealthScore)
	}
}

func TestActionPlanBucketsBySeverityAndCategory(t *testing.T) {
	b := NewBuilder("/charts")
	b.AddLintResult(rules.LintResult{
		Failures: []rules.Diagnostic{
			rules.NewDiagnostic("KL4001", "privileged", rules.SeverityError, rules.CategorySecurity, "critical finding", "a.yaml", position.Position{Line: 1}),
			rules.NewDiagnostic("KL5001", "no-limits", rules.SeverityError, rules.CategoryBestPractice, "high finding", "b.yaml", position.Position{Line: 1}),
			rules.NewDiagnostic("HL3003", "deprecated", rules.SeverityWarning, rules.CategoryTemplate, "high template finding", "c.yaml", position.Position{Line: 1}),
			rules.NewDiagnostic("DCL002", "naming", rules.SeverityWarning, rules.CategoryStyle, "medium finding", "d.yaml", position.Position{Line: 1}),
			rules.NewDiagnostic("DCL010", "info", rules.SeverityInfo, rules.CategoryOther, "low finding", "e.yaml", position.Position{Line: 1}),
		},
		FilesChecked: 5, ChecksRun: 5,
	})
	report := b.Build(0, "", "test")
	if len(report.ActionPlan.Critical) != 1 {
		t.Errorf("expected 1 critical, got %d", len(report.ActionPlan.Critical))
	}
	if len(report.ActionPlan.High) != 2 {
		t.Errorf("expected 2 high, got %d", len(report.ActionPlan.High))
	}
	if len(report.ActionPlan.Medium) != 1 {
		t.Errorf("expected 1 medium, got %d", len(report.ActionPlan.Medium))
	}
	if len(report.ActionPlan.Low) != 1 {
		t.Errorf("expected 1 low, got %d", len(report.ActionPlan.Low))
	}
}

func TestQuickFixesCapAtFiveAndRequireRemediation(t *testing.T) {
	var diags []rules.Diagnostic
	for i := 0; i < 8; i++ {
		d := rules.NewDiagnostic("KL4001", "privileged", rules.SeverityError, rules.CategorySecurity, "bad", "a.yaml", position.Position{Line: i + 1})
		d.Remediation = "drop privileged"
		diags = append(diags, d)
	}
	noRemediation := rules.NewDiagnostic("KL4002", "other", rules.SeverityError, rules.CategorySecurity, "bad", "z.yaml", position.Position{Line: 99})

	b := NewBuilder("/charts")
	b.AddLintResult(rules.LintResult{Failures: append(diags, noRemediation), FilesChecked: 1, ChecksRun: 1})
	report := b.Build(0, "", "test")
	if len(report.QuickFixes) != 5 {
		t.Fatalf("expected quick_fixes capped at 5, got %d", len(report.QuickFixes))
	}
	for _, qf := range report.QuickFixes {
		if qf.Remediation == "" {
			t.Errorf("quick fix without remediation: %+v", qf)
		}
	}
}
