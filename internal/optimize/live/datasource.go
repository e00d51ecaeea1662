// Package live implements the metrics-server/Prometheus-backed resource optimizer (spec §4.8): a
// discovery probe that picks the best available data source, historical/snapshot queriers for
// each source, and a recommendation algorithm that folds percentile usage into a sized
// resources patch.
package live

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/scoutflo/devlint/internal/kclient"
)

// DataSource is the effective source backing a recommendation, in preference order.
type DataSource string

const (
	SourceCombined      DataSource = "Combined"
	SourcePrometheus    DataSource = "Prometheus"
	SourceMetricsServer DataSource = "MetricsServer"
	SourceStatic        DataSource = "Static"
)

// DiscoveryTimeout is the per-probe timeout spec §6.3 specifies for both the metrics-server and
// Prometheus reachability checks.
const DiscoveryTimeout = 5 * time.Second

// Discovery records which live backends answered within the probe window.
type Discovery struct {
	MetricsServerAvailable bool
	PrometheusAvailable    bool
}

// EffectiveSource picks the best-available DataSource given what Discover found.
func (d Discovery) EffectiveSource() DataSource {
	switch {
	case d.MetricsServerAvailable && d.PrometheusAvailable:
		return SourceCombined
	case d.PrometheusAvailable:
		return SourcePrometheus
	case d.MetricsServerAvailable:
		return SourceMetricsServer
	default:
		return SourceStatic
	}
}

// Discover runs the metrics-server and Prometheus reachability probes concurrently, each bounded
// by DiscoveryTimeout, and joins on a sync.WaitGroup per spec §5's fork-join note for I/O-bound
// discovery calls.
func Discover(ctx context.Context, kc *kclient.Client, prometheusURL string) Discovery {
	var wg sync.WaitGroup
	var d Discovery

	if kc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, DiscoveryTimeout)
			defer cancel()
			d.MetricsServerAvailable = probeMetricsServer(probeCtx, kc)
		}()
	}

	if prometheusURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, DiscoveryTimeout)
			defer cancel()
			d.PrometheusAvailable = probePrometheus(probeCtx, prometheusURL)
		}()
	}

	wg.Wait()
	return d
}

func probeMetricsServer(ctx context.Context, kc *kclient.Client) bool {
	done := make(chan bool, 1)
	go func() {
		resources, err := kc.Discovery.ServerResourcesForGroupVersion("metrics.k8s.io/v1beta1")
		done <- err == nil && resources != nil && len(resources.APIResources) > 0
	}()
	select {
	case ok := <-done:
		return ok
	case <-ctx.Done():
		return false
	}
}

func probePrometheus(ctx context.Context, prometheusURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, prometheusURL+"/api/v1/query?query="+url.QueryEscape("up"), nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
