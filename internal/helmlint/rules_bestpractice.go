package helmlint

import (
	"regexp"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

// HL5xxx rules flag a workload-shaped template (one that declares a Deployment/StatefulSet/
// DaemonSet/Pod/Job/CronJob kind) missing a best-practice block in its source text. Like HL4xxx,
// these run pre-render and overlap in intent with kubelint's post-render checks over the same
// concerns (spec §4.5).

func init() {
	register(missingResourcesBlockRule{})
	register(missingProbesRule{})
	register(missingSecurityContextRule{})
}

var workloadKindPattern = regexp.MustCompile(`(?m)^kind:\s*(Deployment|StatefulSet|DaemonSet|Pod|Job|CronJob)\s*$`)
var resourcesBlockPattern = regexp.MustCompile(`resources:`)
var probeBlockPattern = regexp.MustCompile(`(livenessProbe|readinessProbe):`)
var securityContextPattern = regexp.MustCompile(`securityContext:`)

func isWorkloadTemplate(raw string) bool {
	return workloadKindPattern.MatchString(raw)
}

// HL5003: a workload template with no `resources:` block anywhere leaves every container
// unbounded — the same concern internal/optimize/static flags post-parse, applied here pre-render.
type missingResourcesBlockRule struct{}

func (missingResourcesBlockRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL5003", Name: "missing-resources-block", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategoryBestPractice, Description: "workload template declares no resources block",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r missingResourcesBlockRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil || !isWorkloadTemplate(ts.Template.RawContent) || resourcesBlockPattern.MatchString(ts.Template.RawContent) {
		return nil
	}
	return []rules.Diagnostic{withHLRemediation(rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"workload template declares no resources block", ctx.FilePath, position.Position{},
	), "add a resources.requests/limits block, parameterized via .Values")}
}

// HL5004: a workload template with neither a liveness nor a readiness probe.
type missingProbesRule struct{}

func (missingProbesRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL5004", Name: "missing-probes", DefaultSeverity: rules.SeverityInfo,
		Category: rules.CategoryBestPractice, Description: "workload template declares no liveness/readiness probe",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r missingProbesRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil || !isWorkloadTemplate(ts.Template.RawContent) || probeBlockPattern.MatchString(ts.Template.RawContent) {
		return nil
	}
	return []rules.Diagnostic{withHLRemediation(rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"workload template declares no liveness/readiness probe", ctx.FilePath, position.Position{},
	), "add livenessProbe/readinessProbe, parameterized via .Values")}
}

// HL5005: a workload template with no securityContext at all.
type missingSecurityContextRule struct{}

func (missingSecurityContextRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL5005", Name: "missing-security-context", DefaultSeverity: rules.SeverityInfo,
		Category: rules.CategoryBestPractice, Description: "workload template declares no securityContext",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r missingSecurityContextRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil || !isWorkloadTemplate(ts.Template.RawContent) || securityContextPattern.MatchString(ts.Template.RawContent) {
		return nil
	}
	return []rules.Diagnostic{withHLRemediation(rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"workload template declares no securityContext", ctx.FilePath, position.Position{},
	), "add a securityContext that drops capabilities and sets runAsNonRoot")}
}
