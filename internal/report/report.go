// Package report implements the unified report builder (spec §4.9): it deduplicates static and
// live resource recommendations by (namespace, workload, container), computes the health score,
// and buckets diagnostics into an action plan. It is the only package allowed to construct a
// UnifiedReport, mirroring the teacher's convention of a single assembly point for its combined
// cluster-health views (pkg/kubernetes/kubernetes.go's buildClusterSnapshot-style aggregation).
package report

import (
	"sort"

	"github.com/scoutflo/devlint/internal/optimize/live"
	"github.com/scoutflo/devlint/internal/optimize/static"
	"github.com/scoutflo/devlint/internal/rules"
)

// Source marks where a merged recommendation's numeric values ultimately came from.
type Source string

const (
	SourceStaticOnly   Source = "StaticOnly"
	SourceLiveOnly     Source = "LiveOnly"
	SourceCorroborated Source = "Corroborated"
)

// Key is the deduplication identity from spec §4.9.
type Key struct {
	Namespace string
	Workload  string
	Container string
}

// Recommendation is one merged, deduplicated resource finding.
type Recommendation struct {
	Key                      Key
	WorkloadType             string
	Source                   Source
	CurrentCPUMillicores     *int64
	CurrentMemoryBytes       *int64
	RecommendedCPUMillicores int64
	RecommendedMemoryBytes   int64
	CPUWastePercent          float64
	MemoryWastePercent       float64
	Confidence               int
	Severity                 rules.Severity
	Issues                   []string
	FixYAML                  string
	FilePath                 string
	Line                     int
}

// ActionPlan buckets diagnostics by priority, per spec §4.9's prioritization rule.
type ActionPlan struct {
	Critical []rules.Diagnostic
	High     []rules.Diagnostic
	Medium   []rules.Diagnostic
	Low      []rules.Diagnostic
}

// Summary is the report's top-line counters.
type Summary struct {
	FilesChecked      int
	ChecksRun         int
	ErrorCount        int
	WarningCount      int
	ResourcesAnalyzed int
	DuplicatesRemoved int
	HealthScore       int
}

// Metadata carries the run's provenance fields for the JSON metadata block (spec §6).
type Metadata struct {
	Path           string
	AnalysisTimeMS int64
	Timestamp      string
	Version        string
}

// UnifiedReport is the full assembled output of a `--full` optimize run (spec §6's "Unified JSON").
type UnifiedReport struct {
	Summary         Summary
	Recommendations []Recommendation
	ActionPlan      ActionPlan
	QuickFixes      []rules.Diagnostic
	ParseErrors     []string
	LintFailures    []rules.Diagnostic
	DataSource      live.DataSource
	Metadata        Metadata
}

// Builder accumulates the pieces of a report across the dclint/helmlint/kubelint/optimize passes
// that feed a `--full` run, then assembles them with Build.
type Builder struct {
	lintFailures []rules.Diagnostic
	parseErrors  []string
	filesChecked int
	checksRun    int
	staticRecs   []static.ResourceRecommendation
	liveRecs     []live.LiveRecommendation
	chartsTotal  int
	chartsIssues int
	dataSource   live.DataSource
	path         string
}

// NewBuilder returns an empty report Builder for the given analysis root path.
func NewBuilder(path string) *Builder {
	return &Builder{path: path}
}

// AddLintResult folds a dclint/helmlint/kubelint LintResult's failures and parse errors in.
func (b *Builder) AddLintResult(result rules.LintResult) {
	b.lintFailures = append(b.lintFailures, result.Failures...)
	b.parseErrors = append(b.parseErrors, result.ParseErrors...)
	b.filesChecked += result.FilesChecked
	b.checksRun += result.ChecksRun
}

// AddStaticRecommendations folds in the static optimizer's per-container findings.
func (b *Builder) AddStaticRecommendations(recs []static.ResourceRecommendation) {
	b.staticRecs = append(b.staticRecs, recs...)
}

// AddLiveRecommendations folds in the live optimizer's per-container findings and records the
// effective data source for the report.
func (b *Builder) AddLiveRecommendations(recs []live.LiveRecommendation, source live.DataSource) {
	b.liveRecs = append(b.liveRecs, recs...)
	b.dataSource = source
}

// AddHelmChart records one chart's pass/fail state for the helm_score term.
func (b *Builder) AddHelmChart(hasIssues bool) {
	b.chartsTotal++
	if hasIssues {
		b.chartsIssues++
	}
}

// Build assembles the UnifiedReport: dedup, health score, action plan, quick fixes.
func (b *Builder) Build(analysisTimeMS int64, timestamp, version string) UnifiedReport {
	recs, duplicatesRemoved := dedupe(b.staticRecs, b.liveRecs)
	sortRecommendations(recs)

	rules.SortDiagnostics(b.lintFailures)
	plan := bucket(b.lintFailures)
	quickFixes := quickFixList(plan)

	optimal := 0
	for _, r := range recs {
		if len(r.Issues) == 0 {
			optimal++
		}
	}
	securityFindings := countCategory(b.lintFailures, rules.CategorySecurity)

	summary := Summary{
		FilesChecked:      b.filesChecked,
		ChecksRun:         b.checksRun,
		ErrorCount:        countSeverity(b.lintFailures, rules.SeverityError),
		WarningCount:      countSeverity(b.lintFailures, rules.SeverityWarning),
		ResourcesAnalyzed: len(recs),
		DuplicatesRemoved: duplicatesRemoved,
	}
	summary.HealthScore = healthScore(optimal, len(recs), max1(b.filesChecked), securityFindings, b.chartsTotal, b.chartsIssues)

	return UnifiedReport{
		Summary:         summary,
		Recommendations: recs,
		ActionPlan:      plan,
		QuickFixes:      quickFixes,
		ParseErrors:     b.parseErrors,
		LintFailures:    b.lintFailures,
		DataSource:      b.dataSource,
		Metadata: Metadata{
			Path:           b.path,
			AnalysisTimeMS: analysisTimeMS,
			Timestamp:      timestamp,
			Version:        version,
		},
	}
}

// dedupe merges static and live recommendations by (namespace, workload, container), per spec
// §4.9's merge rules: live wins on numeric values, confidence +10 capped at 100, source promoted
// to Corroborated, duplicates_removed incremented. Static inputs are merged in the order given and
// live inputs are sorted by key first, so the merge is deterministic given the same inputs (spec §5
// ordering guarantee).
func dedupe(staticRecs []static.ResourceRecommendation, liveRecs []live.LiveRecommendation) ([]Recommendation, int) {
	byKey := map[Key]*Recommendation{}
	var order []Key

	for _, s := range staticRecs {
		k := Key{Namespace: s.Namespace, Workload: s.ResourceName, Container: s.Container}
		r, ok := byKey[k]
		if !ok {
			r = &Recommendation{Key: k, WorkloadType: s.WorkloadType, Source: SourceStaticOnly, Confidence: 50, FilePath: s.FilePath, Line: s.Line}
			byKey[k] = r
			order = append(order, k)
		}
		if s.Issue != "" {
			r.Issues = append(r.Issues, s.Issue)
		}
		if r.Source == SourceStaticOnly {
			r.RecommendedCPUMillicores = s.Recommended.CPUMillicores
			r.RecommendedMemoryBytes = s.Recommended.MemoryBytes
			if s.HasCurrent {
				cpu, mem := s.Current.CPUMillicores, s.Current.MemoryBytes
				r.CurrentCPUMillicores, r.CurrentMemoryBytes = &cpu, &mem
			}
			r.FixYAML = s.FixYAML
			if s.Severity > r.Severity {
				r.Severity = s.Severity
			}
		}
	}

	duplicatesRemoved := 0
	for _, k := range sortLiveKeys(liveRecs) {
		l := k.rec
		key := Key{Namespace: l.Namespace, Workload: l.WorkloadName, Container: l.ContainerName}
		r, existed := byKey[key]
		if !existed {
			r = &Recommendation{Key: key, Source: SourceLiveOnly, Confidence: l.Confidence, FilePath: "", Line: 0}
			byKey[key] = r
			order = append(order, key)
		} else {
			r.Source = SourceCorroborated
			r.Confidence = l.Confidence + 10
			if r.Confidence > 100 {
				r.Confidence = 100
			}
			duplicatesRemoved++
		}
		r.CurrentCPUMillicores = l.CurrentCPUMillicores
		r.CurrentMemoryBytes = l.CurrentMemoryBytes
		r.RecommendedCPUMillicores = l.RecommendedCPUMillicores
		r.RecommendedMemoryBytes = l.RecommendedMemoryBytes
		r.CPUWastePercent = l.CPUWastePercent
		r.MemoryWastePercent = l.MemoryWastePercent
		r.FixYAML = l.FixYAML
		if l.Severity > r.Severity {
			r.Severity = l.Severity
		}
	}

	out := make([]Recommendation, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out, duplicatesRemoved
}

type liveKeyed struct {
	key Key
	rec live.LiveRecommendation
}

// sortLiveKeys returns live recommendations ordered by dedup key, the "sorted by key before merge"
// determinism spec §5 requires.
func sortLiveKeys(recs []live.LiveRecommendation) []liveKeyed {
	out := make([]liveKeyed, len(recs))
	for i, l := range recs {
		out[i] = liveKeyed{key: Key{Namespace: l.Namespace, Workload: l.WorkloadName, Container: l.ContainerName}, rec: l}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessKey(out[i].key, out[j].key) })
	return out
}

func lessKey(a, b Key) bool {
	if a.Namespace != b.Namespace {
		return a.Namespace < b.Namespace
	}
	if a.Workload != b.Workload {
		return a.Workload < b.Workload
	}
	return a.Container < b.Container
}

func sortRecommendations(recs []Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool { return lessKey(recs[i].Key, recs[j].Key) })
}

func countSeverity(diags []rules.Diagnostic, sev rules.Severity) int {
	n := 0
	for _, d := range diags {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

func countCategory(diags []rules.Diagnostic, cat rules.Category) int {
	n := 0
	for _, d := range diags {
		if d.Category == cat {
			n++
		}
	}
	return n
}

// healthScore implements spec §4.9's formula: 40% resource optimality, 40% security cleanliness,
// 20% helm chart cleanliness, rounded to the nearest integer in [0,100].
func healthScore(optimal, resourcesAnalyzed, securityAnalyzed, securityFindings, chartsTotal, chartsWithIssues int) int {
	resourceScore := float64(optimal) / float64(max1(resourcesAnalyzed)) * 40
	securityScore := float64(securityAnalyzed-securityFindings) / float64(max1(securityAnalyzed)) * 40
	helmScore := float64(chartsTotal-chartsWithIssues) / float64(max1(chartsTotal)) * 20
	total := resourceScore + securityScore + helmScore
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return int(total + 0.5)
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// bucket sorts diagnostics into the action-plan priorities using Diagnostic.Priority, spec §4.9.
func bucket(diags []rules.Diagnostic) ActionPlan {
	var plan ActionPlan
	for _, d := range diags {
		switch d.Priority() {
		case "critical":
			plan.Critical = append(plan.Critical, d)
		case "high":
			plan.High = append(plan.High, d)
		case "medium":
			plan.Medium = append(plan.Medium, d)
		default:
			plan.Low = append(plan.Low, d)
		}
	}
	return plan
}

// quickFixList is the first five diagnostics of critical ∪ high with non-empty remediation.
func quickFixList(plan ActionPlan) []rules.Diagnostic {
	var out []rules.Diagnostic
	for _, group := range [][]rules.Diagnostic{plan.Critical, plan.High} {
		for _, d := range group {
			if d.Remediation == "" {
				continue
			}
			out = append(out, d)
			if len(out) == 5 {
				return out
			}
		}
	}
	return out
}
