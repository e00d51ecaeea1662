package static

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/scoutflo/devlint/internal/kubelint"
	"github.com/scoutflo/devlint/internal/rules"
)

// Rule codes (spec §4.7).
const (
	RuleNoCPURequest        = "NO_CPU_REQUEST"
	RuleNoMemoryRequest     = "NO_MEMORY_REQUEST"
	RuleNoCPULimit          = "NO_CPU_LIMIT"
	RuleNoMemoryLimit       = "NO_MEMORY_LIMIT"
	RuleHighCPURequest      = "HIGH_CPU_REQUEST"
	RuleHighMemoryRequest   = "HIGH_MEMORY_REQUEST"
	RuleExcessiveCPURatio   = "EXCESSIVE_CPU_RATIO"
	RuleExcessiveMemRatio   = "EXCESSIVE_MEMORY_RATIO"
	RuleRequestsEqualLimits = "REQUESTS_EQUAL_LIMITS"
	RuleUnbalancedResources = "UNBALANCED_RESOURCES"
)

// Config tunes the static optimizer's thresholds and inclusion rules.
type Config struct {
	Severity              rules.Severity
	WasteThresholdPercent float64
	SafetyMarginPercent   float64
	IncludeInfo           bool
	IncludeSystem         bool
}

// NewConfig returns the documented defaults: a 10-ratio excessive-limit threshold baseline and a
// 20% over-provisioning threshold are common community defaults for this class of heuristic.
func NewConfig() Config {
	return Config{
		Severity:              rules.SeverityInfo,
		WasteThresholdPercent: 20,
		SafetyMarginPercent:   15,
		IncludeInfo:           false,
		IncludeSystem:         false,
	}
}

// ResourceRecommendation is one static finding for a single container (spec §3).
type ResourceRecommendation struct {
	ResourceKind string
	ResourceName string
	Namespace    string
	Container    string
	WorkloadType string
	Current      ResourceSpec
	HasCurrent   bool
	Recommended  ResourceSpec
	Issue        string
	Severity     rules.Severity
	RuleCode     string
	Message      string
	FilePath     string
	Line         int
	FixYAML      string
}

// heuristicTarget is the template recommendation seeded per workload kind (spec §4.7), used both
// to compare "is this over-provisioned" and to seed fix_yaml when no live data is available.
func heuristicTarget(kind kubelint.Kind) ResourceSpec {
	switch kind {
	case kubelint.KindDaemonSet:
		return ResourceSpec{CPUMillicores: 100, MemoryBytes: 256 * 1024 * 1024}
	default:
		return ResourceSpec{CPUMillicores: 100, MemoryBytes: 128 * 1024 * 1024}
	}
}

// Analyze runs the static optimizer over every workload object's containers.
func Analyze(objects []*kubelint.K8sObject, cfg Config) []ResourceRecommendation {
	var out []ResourceRecommendation
	for _, obj := range objects {
		spec := obj.PodSpec()
		if spec == nil {
			continue
		}
		if !cfg.IncludeSystem && obj.Namespace == "kube-system" {
			continue
		}
		target := heuristicTarget(obj.Kind)
		allowUnboundedCPULimit := obj.Kind == kubelint.KindJob || obj.Kind == kubelint.KindCronJob
		for _, c := range append(append([]corev1.Container{}, spec.InitContainers...), spec.Containers...) {
			out = append(out, analyzeContainer(obj, c, target, allowUnboundedCPULimit, cfg)...)
		}
	}
	return out
}

func analyzeContainer(obj *kubelint.K8sObject, c corev1.Container, target ResourceSpec, allowUnboundedCPULimit bool, cfg Config) []ResourceRecommendation {
	var recs []ResourceRecommendation

	base := ResourceRecommendation{
		ResourceKind: string(obj.Kind),
		ResourceName: obj.Name,
		Namespace:    obj.Namespace,
		Container:    c.Name,
		WorkloadType: string(obj.Kind),
		FilePath:     obj.FilePath,
		Line:         obj.Position.Line,
	}

	cpuReq, hasCPUReq := quantity(c.Resources.Requests, corev1.ResourceCPU)
	memReq, hasMemReq := quantity(c.Resources.Requests, corev1.ResourceMemory)
	cpuLim, hasCPULim := quantity(c.Resources.Limits, corev1.ResourceCPU)
	memLim, hasMemLim := quantity(c.Resources.Limits, corev1.ResourceMemory)

	if !hasCPUReq {
		recs = append(recs, withIssue(base, RuleNoCPURequest, rules.SeverityError,
			fmt.Sprintf("container %q has no CPU request", c.Name), target, fixYAML(target)))
	}
	if !hasMemReq {
		recs = append(recs, withIssue(base, RuleNoMemoryRequest, rules.SeverityError,
			fmt.Sprintf("container %q has no memory request", c.Name), target, fixYAML(target)))
	}
	if !hasCPULim && !allowUnboundedCPULimit {
		recs = append(recs, withIssue(base, RuleNoCPULimit, rules.SeverityWarning,
			fmt.Sprintf("container %q has no CPU limit", c.Name), target, fixYAML(target)))
	}
	if !hasMemLim {
		recs = append(recs, withIssue(base, RuleNoMemoryLimit, rules.SeverityWarning,
			fmt.Sprintf("container %q has no memory limit", c.Name), target, fixYAML(target)))
	}

	if hasCPUReq {
		over := percentOver(float64(cpuReq), float64(target.CPUMillicores))
		if over > cfg.WasteThresholdPercent {
			recs = append(recs, withCurrentIssue(base, RuleHighCPURequest, rules.SeverityWarning,
				fmt.Sprintf("container %q CPU request %dm is %.0f%% above the heuristic baseline", c.Name, cpuReq, over),
				ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, fixYAML(target)))
		}
	}
	if hasMemReq {
		over := percentOver(float64(memReq), float64(target.MemoryBytes))
		if over > cfg.WasteThresholdPercent {
			recs = append(recs, withCurrentIssue(base, RuleHighMemoryRequest, rules.SeverityWarning,
				fmt.Sprintf("container %q memory request is %.0f%% above the heuristic baseline", c.Name, over),
				ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, fixYAML(target)))
		}
	}

	if hasCPUReq && hasCPULim && cpuReq > 0 && float64(cpuLim)/float64(cpuReq) > 10 {
		recs = append(recs, withCurrentIssue(base, RuleExcessiveCPURatio, rules.SeverityWarning,
			fmt.Sprintf("container %q CPU limit/request ratio exceeds 10x", c.Name),
			ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, fixYAML(target)))
	}
	if hasMemReq && hasMemLim && memReq > 0 && float64(memLim)/float64(memReq) > 10 {
		recs = append(recs, withCurrentIssue(base, RuleExcessiveMemRatio, rules.SeverityWarning,
			fmt.Sprintf("container %q memory limit/request ratio exceeds 10x", c.Name),
			ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, fixYAML(target)))
	}

	if hasCPUReq && hasCPULim && hasMemReq && hasMemLim && cpuReq == cpuLim && memReq == memLim {
		if cfg.IncludeInfo {
			recs = append(recs, withCurrentIssue(base, RuleRequestsEqualLimits, rules.SeverityInfo,
				fmt.Sprintf("container %q requests equal limits (Guaranteed QoS)", c.Name),
				ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, ""))
		}
	}

	if hasCPUReq != hasMemReq {
		recs = append(recs, withCurrentIssue(base, RuleUnbalancedResources, rules.SeverityWarning,
			fmt.Sprintf("container %q sets only one of cpu/memory requests", c.Name),
			ResourceSpec{CPUMillicores: cpuReq, MemoryBytes: memReq}, target, fixYAML(target)))
	}

	return recs
}

func quantity(list corev1.ResourceList, name corev1.ResourceName) (int64, bool) {
	q, ok := list[name]
	if !ok {
		return 0, false
	}
	if name == corev1.ResourceCPU {
		v, err := ParseCPU(q.String())
		return v, err == nil
	}
	v, err := ParseMemory(q.String())
	return v, err == nil
}

func percentOver(current, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (current - baseline) / baseline * 100
}

func withIssue(base ResourceRecommendation, code string, sev rules.Severity, msg string, target ResourceSpec, fix string) ResourceRecommendation {
	r := base
	r.Issue = msg
	r.Message = msg
	r.Severity = sev
	r.RuleCode = code
	r.Recommended = target
	r.FixYAML = fix
	return r
}

func withCurrentIssue(base ResourceRecommendation, code string, sev rules.Severity, msg string, current, target ResourceSpec, fix string) ResourceRecommendation {
	r := withIssue(base, code, sev, msg, target, fix)
	r.Current = current
	r.HasCurrent = true
	return r
}

// fixYAML renders a resources patch fragment for a heuristic target, per the same shape spec
// §4.8's live fix emission uses: limit = 2x request for CPU, = request for memory.
func fixYAML(target ResourceSpec) string {
	cpuLimit := ResourceSpec{CPUMillicores: target.CPUMillicores * 2}
	return fmt.Sprintf(
		"resources:\n  requests:\n    cpu: %s\n    memory: %s\n  limits:\n    cpu: %s\n    memory: %s\n",
		target.CPUString(), target.MemoryString(), cpuLimit.CPUString(), target.MemoryString(),
	)
}
