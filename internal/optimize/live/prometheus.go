package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/scoutflo/devlint/internal/apperror"
)

// Stats summarizes a Prometheus range query for one container's resource usage over the
// analysis period (spec §4.8 step 2).
type Stats struct {
	Min         float64
	P50         float64
	P95         float64
	P99         float64
	Max         float64
	Avg         float64
	SampleCount int
}

const cpuUsageQuery = `rate(container_cpu_usage_seconds_total{namespace=%q,pod=~%q,container=%q}[%s])`
const memoryUsageQuery = `container_memory_working_set_bytes{namespace=%q,pod=~%q,container=%q}`

// CPUUsageQuery builds the PromQL instant-vector expression for a container's CPU usage rate over
// the analysis period, grounded on the teacher's QueryPrometheus query-construction style
// (pkg/kubernetes/prometheus.go).
func CPUUsageQuery(namespace, workload, container, period string) string {
	return fmt.Sprintf(cpuUsageQuery, namespace, workload+".*", container, period)
}

// MemoryUsageQuery builds the PromQL instant-vector expression for a container's memory
// working-set bytes.
func MemoryUsageQuery(namespace, workload, container string) string {
	return fmt.Sprintf(memoryUsageQuery, namespace, workload+".*", container)
}

// percentileQuery wraps a base selector in quantile_over_time for the requested period, the usual
// way to derive percentiles from a raw Prometheus time series without a recording rule.
func percentileQuery(quantile float64, base, period string) string {
	return fmt.Sprintf("quantile_over_time(%.2f, %s[%s])", quantile, base, period)
}

// QueryContainerStats issues the percentile/aggregate queries described in spec §4.8 step 1-2 and
// assembles a Stats summary. The returned bool is false when no percentile query returned data
// ("no data" — a conclusive empty result, not an error).
func QueryContainerStats(ctx context.Context, prometheusURL, baseSelector, period string) (Stats, bool, error) {
	var stats Stats
	have := false

	queries := map[string]*float64{
		percentileQuery(0.0, baseSelector, period):  &stats.Min,
		percentileQuery(0.5, baseSelector, period):  &stats.P50,
		percentileQuery(0.95, baseSelector, period): &stats.P95,
		percentileQuery(0.99, baseSelector, period): &stats.P99,
		percentileQuery(1.0, baseSelector, period):  &stats.Max,
	}
	avgQuery := fmt.Sprintf("avg_over_time(%s[%s])", baseSelector, period)
	countQuery := fmt.Sprintf("count_over_time(%s[%s])", baseSelector, period)

	for q, dest := range queries {
		v, ok, err := instantQuery(ctx, prometheusURL, q)
		if err != nil {
			return Stats{}, false, err
		}
		if ok {
			*dest = v
			have = true
		}
	}

	if v, ok, err := instantQuery(ctx, prometheusURL, avgQuery); err != nil {
		return Stats{}, false, err
	} else if ok {
		stats.Avg = v
	}

	if v, ok, err := instantQuery(ctx, prometheusURL, countQuery); err != nil {
		return Stats{}, false, err
	} else if ok {
		stats.SampleCount = int(v)
	}

	return stats, have, nil
}

// instantQuery issues a single Prometheus instant query and extracts the scalar/vector value.
// A conclusive empty result (valid response, zero series) returns ok=false with no error, mirroring
// the teacher's "CONCLUSIVE RESULT: no data points" convention in QueryPrometheus.
func instantQuery(ctx context.Context, prometheusURL, query string) (float64, bool, error) {
	reqURL := fmt.Sprintf("%s/api/v1/query?query=%s", prometheusURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, false, &apperror.NetworkError{Source: "prometheus", Message: "failed to build request", Cause: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, false, &apperror.NetworkError{Source: "prometheus", Message: "query failed", Cause: err}
	}
	defer resp.Body.Close()

	var envelope struct {
		Status string `json:"status"`
		Data   struct {
			Result []struct {
				Value []interface{} `json:"value"`
			} `json:"result"`
		} `json:"data"`
		ErrorType string `json:"errorType"`
		Error     string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return 0, false, &apperror.NetworkError{Source: "prometheus", Message: "failed to decode response", Cause: err}
	}
	if envelope.Status != "success" {
		return 0, false, &apperror.NetworkError{Source: "prometheus", Message: fmt.Sprintf("%s: %s", envelope.ErrorType, envelope.Error)}
	}
	if len(envelope.Data.Result) == 0 || len(envelope.Data.Result[0].Value) < 2 {
		return 0, false, nil
	}
	str, ok := envelope.Data.Result[0].Value[1].(string)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}
