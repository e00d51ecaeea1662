// Package format renders a rules.LintResult (or a full report.UnifiedReport) into the output
// formats spec §6 names: JSON, TTY table, SARIF v2.1.0, Checkstyle XML, CodeClimate JSON, and
// GNU gcc-style lines. No formatter mutates its input; each is a pure function of the result.
package format

import (
	"encoding/json"

	"github.com/scoutflo/devlint/internal/report"
	"github.com/scoutflo/devlint/internal/rules"
)

// diagnosticRecord mirrors spec §6's "Diagnostic record schema (JSON)".
type diagnosticRecord struct {
	Code        string            `json:"code"`
	RuleName    string            `json:"ruleName"`
	Severity    string            `json:"severity"`
	Priority    string            `json:"priority"`
	Category    string            `json:"category"`
	Message     string            `json:"message"`
	File        string            `json:"file"`
	Line        int               `json:"line"`
	Column      int               `json:"column"`
	Fixable     bool              `json:"fixable"`
	Fix         string            `json:"fix,omitempty"`
	Docs        string            `json:"docs,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

func toRecord(d rules.Diagnostic) diagnosticRecord {
	return diagnosticRecord{
		Code: d.Code, RuleName: d.RuleName, Severity: d.Severity.String(), Priority: d.Priority(),
		Category: string(d.Category), Message: d.Message, File: d.FilePath, Line: d.Line, Column: d.Column,
		Fixable: d.Fixable, Fix: d.Remediation, Data: d.Data,
	}
}

// lintJSONReport is the JSON shape for a single-family lint invocation: summary, findings,
// parse_errors? and metadata? (JSON sets no metadata, so that key is omitted).
type lintJSONReport struct {
	Summary      map[string]int     `json:"summary"`
	Findings     []diagnosticRecord `json:"findings"`
	ParseErrors  []string           `json:"parse_errors,omitempty"`
	Metadata     map[string]string  `json:"metadata,omitempty"`
}

// JSON renders a bare LintResult (one linter family, no live/helm fusion) as the primary machine
// format.
func JSON(result rules.LintResult) ([]byte, error) {
	records := make([]diagnosticRecord, 0, len(result.Failures))
	for _, d := range result.Failures {
		records = append(records, toRecord(d))
	}
	out := lintJSONReport{
		Summary: map[string]int{
			"filesChecked": result.FilesChecked,
			"checksRun":    result.ChecksRun,
			"errors":       result.ErrorCount(),
			"warnings":     result.WarningCount(),
		},
		Findings:    records,
		ParseErrors: result.ParseErrors,
	}
	return json.MarshalIndent(out, "", "  ")
}

// unifiedJSONReport is the JSON shape for a `--full` optimize run: summary, live_analysis?,
// resource_optimization, security, action_plan, quick_fixes?, parse_errors?, metadata. There is no
// helm_validation key; Helm findings appear only inside security and action_plan.
type unifiedJSONReport struct {
	Summary            map[string]interface{} `json:"summary"`
	DataSource         string                  `json:"live_analysis,omitempty"`
	ResourceOptimization []recommendationRecord `json:"resource_optimization"`
	Security           []diagnosticRecord       `json:"security"`
	ActionPlan         actionPlanRecord         `json:"action_plan"`
	QuickFixes         []diagnosticRecord       `json:"quick_fixes,omitempty"`
	ParseErrors        []string                 `json:"parse_errors,omitempty"`
	Metadata           map[string]interface{}   `json:"metadata"`
}

type recommendationRecord struct {
	Namespace      string  `json:"namespace"`
	Workload       string  `json:"workload"`
	Container      string  `json:"container"`
	Source         string  `json:"source"`
	RecommendedCPU int64   `json:"recommended_cpu_millicores"`
	RecommendedMem int64   `json:"recommended_memory_bytes"`
	CPUWastePct    float64 `json:"cpu_waste_pct,omitempty"`
	MemoryWastePct float64 `json:"memory_waste_pct,omitempty"`
	Confidence     int     `json:"confidence"`
	FixYAML        string  `json:"fix_yaml,omitempty"`
}

type actionPlanRecord struct {
	Critical []diagnosticRecord `json:"critical"`
	High     []diagnosticRecord `json:"high"`
	Medium   []diagnosticRecord `json:"medium"`
	Low      []diagnosticRecord `json:"low"`
}

func toRecommendationRecord(r report.Recommendation) recommendationRecord {
	return recommendationRecord{
		Namespace: r.Key.Namespace, Workload: r.Key.Workload, Container: r.Key.Container,
		Source: string(r.Source), RecommendedCPU: r.RecommendedCPUMillicores, RecommendedMem: r.RecommendedMemoryBytes,
		CPUWastePct: r.CPUWastePercent, MemoryWastePct: r.MemoryWastePercent, Confidence: r.Confidence, FixYAML: r.FixYAML,
	}
}

func toDiagnosticRecords(diags []rules.Diagnostic) []diagnosticRecord {
	out := make([]diagnosticRecord, 0, len(diags))
	for _, d := range diags {
		out = append(out, toRecord(d))
	}
	return out
}

// UnifiedJSON renders a full report.UnifiedReport per spec §6's `--full` schema.
func UnifiedJSON(rep report.UnifiedReport) ([]byte, error) {
	out := unifiedJSONReport{
		Summary: map[string]interface{}{
			"filesChecked":      rep.Summary.FilesChecked,
			"checksRun":         rep.Summary.ChecksRun,
			"errors":            rep.Summary.ErrorCount,
			"warnings":          rep.Summary.WarningCount,
			"resourcesAnalyzed": rep.Summary.ResourcesAnalyzed,
			"duplicatesRemoved": rep.Summary.DuplicatesRemoved,
			"healthScore":       rep.Summary.HealthScore,
		},
		DataSource: string(rep.DataSource),
		Security:   toDiagnosticRecords(rep.LintFailures),
		ActionPlan: actionPlanRecord{
			Critical: toDiagnosticRecords(rep.ActionPlan.Critical),
			High:     toDiagnosticRecords(rep.ActionPlan.High),
			Medium:   toDiagnosticRecords(rep.ActionPlan.Medium),
			Low:      toDiagnosticRecords(rep.ActionPlan.Low),
		},
		QuickFixes:  toDiagnosticRecords(rep.QuickFixes),
		ParseErrors: rep.ParseErrors,
		Metadata: map[string]interface{}{
			"path":           rep.Metadata.Path,
			"analysis_time_ms": rep.Metadata.AnalysisTimeMS,
			"timestamp":      rep.Metadata.Timestamp,
			"version":        rep.Metadata.Version,
		},
	}
	for _, r := range rep.Recommendations {
		out.ResourceOptimization = append(out.ResourceOptimization, toRecommendationRecord(r))
	}
	return json.MarshalIndent(out, "", "  ")
}
