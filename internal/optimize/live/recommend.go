package live

import (
	"context"
	"fmt"
	"math"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/kclient"
	"github.com/scoutflo/devlint/internal/optimize/static"
	"github.com/scoutflo/devlint/internal/rules"
)

// MinSamples is the default floor below which a Prometheus history is too thin to trust (spec
// §4.8 step 3); falling short triggers a fallback to the next data source down the preference list.
const MinSamples = 100

// Config tunes the live optimizer's recommendation algorithm.
type Config struct {
	Namespace           string
	Period              string
	SafetyMarginPercent float64
	MinSamples          int
	IncludeSystem       bool
}

// NewConfig returns the documented defaults: a 7-day period, 15% safety margin, 100-sample floor.
func NewConfig() Config {
	return Config{
		Period:              "7d",
		SafetyMarginPercent: 15,
		MinSamples:          MinSamples,
	}
}

// UsageHistory summarizes a time-series-backed usage sample (spec §3).
type UsageHistory struct {
	SampleCount int
	CPUMin      int64
	CPUP50      int64
	CPUP95      int64
	CPUP99      int64
	CPUMax      int64
	CPUAvg      int64
	MemMin      int64
	MemP50      int64
	MemP95      int64
	MemP99      int64
	MemMax      int64
	MemAvg      int64
}

// LiveRecommendation is one container's usage-derived resource sizing (spec §3).
type LiveRecommendation struct {
	Namespace                 string
	WorkloadName              string
	ContainerName             string
	DataSource                DataSource
	CurrentCPUMillicores      *int64
	CurrentMemoryBytes        *int64
	RecommendedCPUMillicores  int64
	RecommendedMemoryBytes    int64
	CPUWastePercent           float64
	MemoryWastePercent        float64
	Confidence                int
	Severity                  rules.Severity
	History                   *UsageHistory
	FixYAML                   string
	Warning                   string
}

// Recommend runs the per-container algorithm of spec §4.8: it tries Prometheus history first,
// falls back to a metrics-server snapshot, and finally to the static heuristic, folding whatever
// data it gets into a sized recommendation plus a confidence score. The final "+10 when
// corroborated by a matching static finding" bump (spec §4.8 step 7) is applied once, by
// internal/report's dedupe pass, since that is the only place a live recommendation is actually
// compared against its static counterpart for the same container.
func Recommend(ctx context.Context, kc *kclient.Client, prometheusURL string, namespace, workload, container string, currentCPU, currentMem *int64, cfg Config) (LiveRecommendation, error) {
	rec := LiveRecommendation{
		Namespace: namespace, WorkloadName: workload, ContainerName: container,
		CurrentCPUMillicores: currentCPU, CurrentMemoryBytes: currentMem,
	}

	if prometheusURL != "" {
		baseCPU := CPUUsageQuery(namespace, workload, container, cfg.Period)
		baseMem := fmt.Sprintf(memoryUsageQuery, namespace, workload+".*", container)

		cpuStats, cpuOK, err := QueryContainerStats(ctx, prometheusURL, baseCPU, cfg.Period)
		if err != nil {
			rec.Warning = fmt.Sprintf("prometheus cpu query failed: %v", err)
		}
		memStats, memOK, err := QueryContainerStats(ctx, prometheusURL, baseMem, cfg.Period)
		if err != nil {
			rec.Warning = fmt.Sprintf("prometheus memory query failed: %v", err)
		}

		minSamples := cfg.MinSamples
		if minSamples <= 0 {
			minSamples = MinSamples
		}
		if cpuOK && memOK && cpuStats.SampleCount >= minSamples {
			rec.History = &UsageHistory{
				SampleCount: cpuStats.SampleCount,
				CPUMin:      millicores(cpuStats.Min), CPUP50: millicores(cpuStats.P50),
				CPUP95: millicores(cpuStats.P95), CPUP99: millicores(cpuStats.P99),
				CPUMax: millicores(cpuStats.Max), CPUAvg: millicores(cpuStats.Avg),
				MemMin: int64(memStats.Min), MemP50: int64(memStats.P50),
				MemP95: int64(memStats.P95), MemP99: int64(memStats.P99),
				MemMax: int64(memStats.Max), MemAvg: int64(memStats.Avg),
			}
			rec.DataSource = SourcePrometheus
		} else {
			rec.Warning = fmt.Sprintf("prometheus returned %d samples, below the %d-sample floor; falling back", cpuStats.SampleCount, minSamples)
		}
	}

	if rec.History == nil && kc != nil {
		if snap, err := PodContainerSnapshot(ctx, kc, namespace, workload, container); err == nil {
			rec.History = &UsageHistory{
				SampleCount: 1,
				CPUMin: snap.CPUMillicores, CPUP50: snap.CPUMillicores, CPUP95: snap.CPUMillicores,
				CPUP99: snap.CPUMillicores, CPUMax: snap.CPUMillicores, CPUAvg: snap.CPUMillicores,
				MemMin: snap.MemoryBytes, MemP50: snap.MemoryBytes, MemP95: snap.MemoryBytes,
				MemP99: snap.MemoryBytes, MemMax: snap.MemoryBytes, MemAvg: snap.MemoryBytes,
			}
			rec.DataSource = SourceMetricsServer
		} else if rec.Warning == "" {
			if ne, ok := err.(*apperror.NetworkError); ok {
				rec.Warning = ne.Error()
			}
		}
	}

	margin := 1 + cfg.SafetyMarginPercent/100
	if rec.History == nil {
		rec.DataSource = SourceStatic
		target := static.ResourceSpec{CPUMillicores: 100, MemoryBytes: 128 * 1024 * 1024}
		rec.RecommendedCPUMillicores = target.CPUMillicores
		rec.RecommendedMemoryBytes = target.MemoryBytes
		rec.Confidence = 50
	} else {
		rec.RecommendedCPUMillicores = roundUpCPU(math.Ceil(float64(rec.History.CPUP99) * margin))
		rec.RecommendedMemoryBytes = roundUpMemory(math.Ceil(float64(rec.History.MemP99) * margin))
		rec.Confidence = 50
		if rec.DataSource == SourceMetricsServer || rec.DataSource == SourcePrometheus {
			rec.Confidence += 10
		}
	}

	if rec.CurrentCPUMillicores != nil && *rec.CurrentCPUMillicores > 0 && rec.History != nil {
		rec.CPUWastePercent = math.Max(0, float64(*rec.CurrentCPUMillicores-rec.History.CPUP95)/float64(*rec.CurrentCPUMillicores)*100)
	}
	if rec.CurrentMemoryBytes != nil && *rec.CurrentMemoryBytes > 0 && rec.History != nil {
		rec.MemoryWastePercent = math.Max(0, float64(*rec.CurrentMemoryBytes-rec.History.MemP95)/float64(*rec.CurrentMemoryBytes)*100)
	}

	rec.Severity = severityFor(rec)
	rec.FixYAML = fixYAML(rec.RecommendedCPUMillicores, rec.RecommendedMemoryBytes)
	if rec.Confidence > 100 {
		rec.Confidence = 100
	}
	return rec, nil
}

func millicores(cores float64) int64 {
	return int64(cores * 1000)
}

// roundUpCPU rounds up to the nearest 10m with a 10m floor (spec §4.8 step 4).
func roundUpCPU(m float64) int64 {
	if m < 10 {
		return 10
	}
	return int64(math.Ceil(m/10) * 10)
}

// roundUpMemory rounds up to the nearest 4Mi (spec §4.8 step 5).
func roundUpMemory(b float64) int64 {
	const fourMi = 4 * 1024 * 1024
	return int64(math.Ceil(b/fourMi) * fourMi)
}

func severityFor(rec LiveRecommendation) rules.Severity {
	missingRequest := rec.CurrentCPUMillicores == nil || rec.CurrentMemoryBytes == nil
	p95 := int64(0)
	if rec.History != nil {
		p95 = rec.History.CPUP95
	}
	switch {
	case missingRequest && p95 > 0:
		return rules.SeverityError
	case rec.CPUWastePercent > 50 || rec.MemoryWastePercent > 50:
		return rules.SeverityError
	case rec.CPUWastePercent > 20 || rec.MemoryWastePercent > 20:
		return rules.SeverityWarning
	default:
		return rules.SeverityInfo
	}
}

func fixYAML(cpuMillicores, memBytes int64) string {
	spec := static.ResourceSpec{CPUMillicores: cpuMillicores, MemoryBytes: memBytes}
	limitCPU := static.ResourceSpec{CPUMillicores: cpuMillicores * 2}
	return fmt.Sprintf(
		"resources:\n  requests:\n    cpu: %s\n    memory: %s\n  limits:\n    cpu: %s\n    memory: %s\n",
		spec.CPUString(), spec.MemoryString(), limitCPU.CPUString(), spec.MemoryString(),
	)
}
