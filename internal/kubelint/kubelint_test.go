package kubelint

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

func TestLintPrivilegedAndHostNetwork(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: default
spec:
  template:
    spec:
      hostNetwork: true
      containers:
        - name: app
          image: nginx:1.25
          securityContext:
            privileged: true
`
	result, err := Lint("deployment.yaml", src, rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(result)
	if got["KL4001"] != 1 {
		t.Errorf("KL4001 count = %d, want 1 (got %v)", got["KL4001"], got)
	}
	if got["KL4002"] != 1 {
		t.Errorf("KL4002 count = %d, want 1 (got %v)", got["KL4002"], got)
	}
}

func TestLintLatestTagAndWritableHostMount(t *testing.T) {
	src := `
apiVersion: apps/v1
kind: DaemonSet
metadata:
  name: agent
spec:
  template:
    spec:
      volumes:
        - name: hostfs
          hostPath:
            path: /var/lib/docker
      containers:
        - name: app
          image: myorg/agent
          volumeMounts:
            - name: hostfs
              mountPath: /host
`
	result, err := Lint("daemonset.yaml", src, rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := codes(result)
	if got["KL4007"] != 1 {
		t.Errorf("KL4007 (latest-tag) count = %d, want 1 (got %v)", got["KL4007"], got)
	}
	if got["KL4005"] != 1 {
		t.Errorf("KL4005 (host-mounts) count = %d, want 1 (got %v)", got["KL4005"], got)
	}
	if got["KL4006"] != 1 {
		t.Errorf("KL4006 (writable-host-mount) count = %d, want 1 (got %v)", got["KL4006"], got)
	}
}

func TestLintSkipsNonWorkloadKinds(t *testing.T) {
	src := `
apiVersion: v1
kind: Service
metadata:
  name: web
spec:
  selector:
    app: web
  ports:
    - port: 80
`
	result, err := Lint("service.yaml", src, rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Failures) != 0 {
		t.Errorf("expected no workload-only diagnostics for a Service, got %v", result.Failures)
	}
}

func TestLintUnknownKindDoesNotError(t *testing.T) {
	src := `
apiVersion: example.com/v1
kind: FancyCustomResource
metadata:
  name: custom
`
	result, err := Lint("custom.yaml", src, rules.NewConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FilesChecked != 1 {
		t.Errorf("expected 1 object decoded, got %d", result.FilesChecked)
	}
}
