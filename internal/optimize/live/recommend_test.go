package live

import (
	"context"
	"testing"

	"github.com/scoutflo/devlint/internal/rules"
)

func TestRecommendStaticFallbackWithNoSources(t *testing.T) {
	rec, err := Recommend(context.Background(), nil, "", "default", "web", "app", nil, nil, NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.DataSource != SourceStatic {
		t.Fatalf("expected SourceStatic with no prometheus URL and nil client, got %v", rec.DataSource)
	}
	if rec.Confidence != 50 {
		t.Fatalf("expected static confidence of 50, got %d", rec.Confidence)
	}
	if rec.History != nil {
		t.Fatalf("expected no history with zero samples, got %+v", rec.History)
	}
	if rec.FixYAML == "" {
		t.Fatalf("expected a non-empty fix_yaml even for the static fallback")
	}
}

func TestRoundUpCPUFloorAndGranularity(t *testing.T) {
	cases := map[float64]int64{
		0:   10,
		5:   10,
		11:  20,
		100: 100,
		101: 110,
	}
	for in, want := range cases {
		if got := roundUpCPU(in); got != want {
			t.Errorf("roundUpCPU(%v) = %d, want %d", in, got, want)
		}
	}
}

func TestRoundUpMemoryGranularity(t *testing.T) {
	fourMi := int64(4 * 1024 * 1024)
	if got := roundUpMemory(1); got != fourMi {
		t.Errorf("roundUpMemory(1) = %d, want %d (one byte rounds up to 4Mi)", got, fourMi)
	}
	if got := roundUpMemory(float64(fourMi)); got != fourMi {
		t.Errorf("roundUpMemory(4Mi) = %d, want %d (already aligned)", got, fourMi)
	}
	if got := roundUpMemory(float64(fourMi) + 1); got != 2*fourMi {
		t.Errorf("roundUpMemory(4Mi+1) = %d, want %d", got, 2*fourMi)
	}
}

func TestSeverityForMissingRequestWithUsage(t *testing.T) {
	rec := LiveRecommendation{
		History: &UsageHistory{CPUP95: 100},
	}
	if got := severityFor(rec); got != rules.SeverityError {
		t.Fatalf("missing request + nonzero p95 usage must be Critical/Error, got %v", got)
	}
}

func TestSeverityForHighWaste(t *testing.T) {
	cpu := int64(1000)
	rec := LiveRecommendation{
		CurrentCPUMillicores: &cpu,
		CurrentMemoryBytes:   &cpu,
		CPUWastePercent:      60,
		History:              &UsageHistory{CPUP95: 10},
	}
	if got := severityFor(rec); got != rules.SeverityError {
		t.Fatalf("waste > 50%% must be High/Error, got %v", got)
	}
}

func TestSeverityForLowWasteIsInfo(t *testing.T) {
	cpu := int64(1000)
	rec := LiveRecommendation{
		CurrentCPUMillicores: &cpu,
		CurrentMemoryBytes:   &cpu,
		CPUWastePercent:      5,
		MemoryWastePercent:   5,
		History:              &UsageHistory{CPUP95: 900},
	}
	if got := severityFor(rec); got != rules.SeverityInfo {
		t.Fatalf("low waste with a set request must be Low/Info, got %v", got)
	}
}

func TestEffectiveSourcePreferenceOrder(t *testing.T) {
	cases := []struct {
		d    Discovery
		want DataSource
	}{
		{Discovery{MetricsServerAvailable: true, PrometheusAvailable: true}, SourceCombined},
		{Discovery{PrometheusAvailable: true}, SourcePrometheus},
		{Discovery{MetricsServerAvailable: true}, SourceMetricsServer},
		{Discovery{}, SourceStatic},
	}
	for _, c := range cases {
		if got := c.d.EffectiveSource(); got != c.want {
			t.Errorf("EffectiveSource(%+v) = %v, want %v", c.d, got, c.want)
		}
	}
}

func TestFixYAMLLimitsDoubleRequest(t *testing.T) {
	yaml := fixYAML(100, 128*1024*1024)
	if yaml == "" {
		t.Fatal("expected non-empty fix yaml")
	}
	if !contains(yaml, "cpu: 100m") || !contains(yaml, "cpu: 200m") {
		t.Errorf("expected request cpu=100m and limit cpu=200m (2x) in %q", yaml)
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (func() bool {
		for i := 0; i+len(sub) <= len(s); i++ {
			if s[i:i+len(sub)] == sub {
				return true
			}
		}
		return false
	})()
}
