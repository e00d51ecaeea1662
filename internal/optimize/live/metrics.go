package live

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/scoutflo/devlint/internal/apperror"
	"github.com/scoutflo/devlint/internal/kclient"
)

// Snapshot is a single metrics-server reading for one container, the "MetricsServer" data source
// (spec §4.8's preference list entry 3) — no history, just current usage.
type Snapshot struct {
	CPUMillicores int64
	MemoryBytes   int64
}

// PodContainerSnapshot fetches the current metrics-server reading for one container, adapted from
// the teacher's GetPodMetrics (pkg/kubernetes/metrics_server.go): same
// MetricsV1beta1().PodMetricses(namespace).Get call, narrowed to a single container's usage.
func PodContainerSnapshot(ctx context.Context, kc *kclient.Client, namespace, pod, container string) (Snapshot, error) {
	podMetrics, err := kc.Metrics.MetricsV1beta1().PodMetricses(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return Snapshot{}, &apperror.NetworkError{Source: "metrics-server", Message: fmt.Sprintf("pod %s/%s", namespace, pod), Cause: err}
	}
	for _, c := range podMetrics.Containers {
		if c.Name != container {
			continue
		}
		cpu := c.Usage.Cpu().MilliValue()
		mem := c.Usage.Memory().Value()
		return Snapshot{CPUMillicores: cpu, MemoryBytes: mem}, nil
	}
	return Snapshot{}, &apperror.NetworkError{Source: "metrics-server", Message: fmt.Sprintf("container %s not found in pod %s/%s metrics", container, namespace, pod)}
}
