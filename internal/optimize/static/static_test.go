package static

import (
	"testing"

	"github.com/scoutflo/devlint/internal/kubelint"
)

func ruleCounts(recs []ResourceRecommendation) map[string]int {
	out := map[string]int{}
	for _, r := range recs {
		out[r.RuleCode]++
	}
	return out
}

func decodeOne(t *testing.T, src string) *kubelint.K8sObject {
	t.Helper()
	objs, err := kubelint.DecodeObjects("deployment.yaml", src)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(objs) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objs))
	}
	return objs[0]
}

func TestAnalyzeMissingRequestsAndLimits(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:1.25
`
	recs := Analyze([]*kubelint.K8sObject{decodeOne(t, src)}, NewConfig())
	got := ruleCounts(recs)
	for _, code := range []string{RuleNoCPURequest, RuleNoMemoryRequest, RuleNoCPULimit, RuleNoMemoryLimit} {
		if got[code] < 1 {
			t.Errorf("%s count = %d, want >= 1 (got %v)", code, got[code], got)
		}
	}
	// Neither request is set, so the two are not unbalanced.
	if got[RuleUnbalancedResources] != 0 {
		t.Errorf("%s count = %d, want 0 (got %v)", RuleUnbalancedResources, got[RuleUnbalancedResources], got)
	}
}

func TestAnalyzeHighRequestFlagged(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:1.25
          resources:
            requests:
              cpu: 2
              memory: 4Gi
            limits:
              cpu: "4"
              memory: 4Gi
`
	recs := Analyze([]*kubelint.K8sObject{decodeOne(t, src)}, NewConfig())
	got := ruleCounts(recs)
	if got[RuleHighCPURequest] != 1 {
		t.Errorf("%s count = %d, want 1 (got %v)", RuleHighCPURequest, got[RuleHighCPURequest], got)
	}
	if got[RuleHighMemoryRequest] != 1 {
		t.Errorf("%s count = %d, want 1 (got %v)", RuleHighMemoryRequest, got[RuleHighMemoryRequest], got)
	}
	if got[RuleNoCPURequest] != 0 || got[RuleNoMemoryRequest] != 0 {
		t.Errorf("did not expect missing-request codes, got %v", got)
	}
}

func TestAnalyzeExcessiveRatioFlagged(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:1.25
          resources:
            requests:
              cpu: 100m
              memory: 128Mi
            limits:
              cpu: "2"
              memory: 128Mi
`
	recs := Analyze([]*kubelint.K8sObject{decodeOne(t, src)}, NewConfig())
	got := ruleCounts(recs)
	if got[RuleExcessiveCPURatio] != 1 {
		t.Errorf("%s count = %d, want 1 (got %v)", RuleExcessiveCPURatio, got[RuleExcessiveCPURatio], got)
	}
}

func TestAnalyzeRequestsEqualLimitsOnlyWhenIncludeInfo(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:1.25
          resources:
            requests:
              cpu: 100m
              memory: 128Mi
            limits:
              cpu: 100m
              memory: 128Mi
`
	obj := decodeOne(t, src)

	cfg := NewConfig()
	recs := Analyze([]*kubelint.K8sObject{obj}, cfg)
	if ruleCounts(recs)[RuleRequestsEqualLimits] != 0 {
		t.Errorf("did not expect %s without IncludeInfo", RuleRequestsEqualLimits)
	}

	cfg.IncludeInfo = true
	recs = Analyze([]*kubelint.K8sObject{obj}, cfg)
	if ruleCounts(recs)[RuleRequestsEqualLimits] != 1 {
		t.Errorf("expected %s with IncludeInfo set", RuleRequestsEqualLimits)
	}
}

func TestAnalyzeJobAllowsUnboundedCPULimit(t *testing.T) {
	src := `
apiVersion: batch/v1
kind: Job
metadata:
  name: batch
spec:
  template:
    spec:
      containers:
        - name: app
          image: worker:1.0
          resources:
            requests:
              cpu: 100m
              memory: 128Mi
            limits:
              memory: 128Mi
`
	recs := Analyze([]*kubelint.K8sObject{decodeOne(t, src)}, NewConfig())
	if ruleCounts(recs)[RuleNoCPULimit] != 0 {
		t.Errorf("Jobs should not be flagged for an unbounded CPU limit")
	}
}

func TestAnalyzeSkipsKubeSystemByDefault(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: kube-system
spec:
  template:
    spec:
      containers:
        - name: app
          image: nginx:1.25
`
	obj := decodeOne(t, src)
	if len(Analyze([]*kubelint.K8sObject{obj}, NewConfig())) != 0 {
		t.Errorf("expected kube-system namespace to be skipped by default")
	}

	cfg := NewConfig()
	cfg.IncludeSystem = true
	if len(Analyze([]*kubelint.K8sObject{obj}, cfg)) == 0 {
		t.Errorf("expected kube-system namespace to be analyzed when IncludeSystem is set")
	}
}

func TestParseCPUAndMemoryRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"500m", 500},
		{"1", 1000},
		{"0.5", 500},
	}
	for _, c := range cases {
		got, err := ParseCPU(c.in)
		if err != nil {
			t.Fatalf("ParseCPU(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseCPU(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	memCases := []struct {
		in   string
		want int64
	}{
		{"128Mi", 128 * 1024 * 1024},
		{"1Gi", 1024 * 1024 * 1024},
		{"500K", 500 * 1000},
		{"1024", 1024},
	}
	for _, c := range memCases {
		got, err := ParseMemory(c.in)
		if err != nil {
			t.Fatalf("ParseMemory(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseMemory(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}
