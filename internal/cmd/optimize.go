package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scoutflo/devlint/internal/format"
	"github.com/scoutflo/devlint/internal/helmlint"
	"github.com/scoutflo/devlint/internal/kclient"
	"github.com/scoutflo/devlint/internal/kubelint"
	"github.com/scoutflo/devlint/internal/optimize/live"
	"github.com/scoutflo/devlint/internal/optimize/static"
	"github.com/scoutflo/devlint/internal/report"
	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/version"
)

func newOptimizeCmd() *cobra.Command {
	var (
		cluster, prometheusURL, period, format_, output, cloudProvider, region string
		safetyMargin, thresholdPct                                             float64
		includeInfo, includeSystem, full, noFail                               bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <path>",
		Short: "Static and live-aware resource right-sizing over Kubernetes manifests",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			start := time.Now()
			path := args[0]

			if prometheusURL == "" {
				prometheusURL = os.Getenv("PROMETHEUS_URL")
			}
			_ = cloudProvider // accepted for interface parity with spec §6; no cloud-specific pricing/sizing logic in this core
			_ = region

			files, err := walkManifestFiles(path)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				exitCode = exitInvalidArgs
				return
			}

			staticCfg := static.NewConfig()
			staticCfg.WasteThresholdPercent = defaultIfZero(thresholdPct, staticCfg.WasteThresholdPercent)
			staticCfg.SafetyMarginPercent = defaultIfZero(safetyMargin, staticCfg.SafetyMarginPercent)
			staticCfg.IncludeInfo = includeInfo
			staticCfg.IncludeSystem = includeSystem

			builder := report.NewBuilder(path)
			var allObjects []*kubelint.K8sObject
			for _, f := range files {
				source, _, readErr := readSource(f, "")
				if readErr != nil {
					builder.AddLintResult(rules.LintResult{ParseErrors: []string{readErr.Error()}})
					continue
				}
				objects, decodeErr := kubelint.DecodeObjects(f, source)
				if decodeErr != nil {
					builder.AddLintResult(rules.LintResult{ParseErrors: []string{decodeErr.Error()}})
					continue
				}
				allObjects = append(allObjects, objects...)
			}

			staticRecs := static.Analyze(allObjects, staticCfg)
			builder.AddStaticRecommendations(staticRecs)

			dataSource := live.SourceStatic
			if cluster != "" || prometheusURL != "" {
				liveRecs, source := runLiveOptimizer(cmd, cluster, prometheusURL, period, safetyMargin, includeSystem, staticRecs)
				builder.AddLiveRecommendations(liveRecs, source)
				dataSource = source
			}

			if full {
				runLintCfg := rules.NewConfig()
				for _, f := range files {
					source, _, readErr := readSource(f, "")
					if readErr != nil {
						continue
					}
					if result, lintErr := kubelint.Lint(f, source, runLintCfg); lintErr == nil {
						builder.AddLintResult(result)
					}
				}
				for _, chartDir := range findChartDirs(path) {
					if result, lintErr := helmlint.Lint(chartDir, runLintCfg); lintErr == nil {
						builder.AddLintResult(result)
						builder.AddHelmChart(len(result.Failures) > 0)
					}
				}
			}

			elapsedMS := time.Since(start).Milliseconds()
			rep := builder.Build(elapsedMS, start.UTC().Format(time.RFC3339), version.Version)
			rep.DataSource = dataSource

			var out []byte
			var renderErr error
			switch format_ {
			case "", "table":
				out = []byte(renderUnifiedTable(rep))
			case "json":
				out, renderErr = format.UnifiedJSON(rep)
			default:
				renderErr = fmt.Errorf("optimize supports --format table|json, got %q", format_)
			}
			if renderErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), renderErr)
				exitCode = exitInvalidArgs
				return
			}
			if writeErr := writeOutput(output, out); writeErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), writeErr)
				exitCode = exitInvalidArgs
				return
			}

			switch {
			case noFail:
				exitCode = exitOK
			case len(rep.LintFailures) > 0 || len(rep.Recommendations) > 0:
				exitCode = exitFindings
			default:
				exitCode = exitOK
			}
		},
	}

	cmd.Flags().StringVar(&cluster, "cluster", "", "Kube context name to use for live metrics (defaults to KUBECONFIG's current context)")
	cmd.Flags().StringVar(&prometheusURL, "prometheus", "", "Prometheus base URL (falls back to $PROMETHEUS_URL)")
	cmd.Flags().StringVar(&period, "period", "7d", "Historical analysis period (e.g. 7d, 24h)")
	cmd.Flags().Float64Var(&safetyMargin, "safety-margin", 15, "Safety margin percent applied to recommended resources")
	cmd.Flags().Float64Var(&thresholdPct, "threshold", 20, "Over-provisioning waste threshold percent")
	cmd.Flags().BoolVar(&includeInfo, "include-info", false, "Include informational (Guaranteed QoS) findings")
	cmd.Flags().BoolVar(&includeSystem, "include-system", false, "Include kube-system namespaced workloads")
	cmd.Flags().BoolVar(&full, "full", false, "Also run kubelint and helmlint and merge into the unified report")
	cmd.Flags().StringVar(&format_, "format", "table", "Output format (table|json)")
	cmd.Flags().StringVar(&output, "output", "", "Write report to a file instead of stdout")
	cmd.Flags().StringVar(&cloudProvider, "cloud-provider", "onprem", "Cloud provider context (aws|gcp|azure|onprem)")
	cmd.Flags().StringVar(&region, "region", "", "Cloud region, paired with --cloud-provider")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "Always exit 0 regardless of findings")
	return cmd
}

func defaultIfZero(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// runLiveOptimizer discovers the best-available data source and recommends per-container sizing
// for every distinct (namespace, workload, container) triple the static pass found, per spec §4.8.
func runLiveOptimizer(cmd *cobra.Command, clusterCtx, prometheusURL, period string, safetyMargin float64, includeSystem bool, staticRecs []static.ResourceRecommendation) ([]live.LiveRecommendation, live.DataSource) {
	ctx := context.Background()

	kc, err := kclient.New("", clusterCtx)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: cluster unreachable, falling back to static optimization: %v\n", err)
		kc = nil
	}

	discovery := live.Discover(ctx, kc, prometheusURL)
	source := discovery.EffectiveSource()

	cfg := live.NewConfig()
	if period != "" {
		cfg.Period = period
	}
	cfg.SafetyMarginPercent = safetyMargin
	cfg.IncludeSystem = includeSystem

	type key struct{ ns, wl, ctr string }

	var recs []live.LiveRecommendation
	visited := map[key]bool{}
	for _, s := range staticRecs {
		k := key{s.Namespace, s.ResourceName, s.Container}
		if visited[k] {
			continue
		}
		visited[k] = true

		var currentCPU, currentMem *int64
		if s.HasCurrent {
			c := s.Current.CPUMillicores
			m := s.Current.MemoryBytes
			currentCPU, currentMem = &c, &m
		}

		// Corroboration confidence (+10 for a matching static finding, spec §4.8 step 7) is
		// applied once, downstream in internal/report's dedupe pass, not here: every container
		// walked in this loop came from staticRecs in the first place, so pre-bumping confidence
		// here would double count against the dedupe-layer bump for the same match.
		rec, recErr := live.Recommend(ctx, kc, prometheusURL, s.Namespace, s.ResourceName, s.Container, currentCPU, currentMem, cfg)
		if recErr != nil {
			continue
		}
		recs = append(recs, rec)
	}
	return recs, source
}

// findChartDirs finds directories under root that contain a Chart.yaml, for `optimize --full`'s
// helm_score contribution.
func findChartDirs(root string) []string {
	var dirs []string
	_ = filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil || !fi.IsDir() {
			return nil
		}
		if _, statErr := os.Stat(filepath.Join(path, helmlint.ChartYAML)); statErr == nil {
			dirs = append(dirs, path)
		}
		return nil
	})
	return dirs
}

func renderUnifiedTable(rep report.UnifiedReport) string {
	return fmt.Sprintf(
		"health score: %d/100\nfiles checked: %d, checks run: %d\nerrors: %d, warnings: %d\nresources analyzed: %d (duplicates removed: %d)\ndata source: %s\ncritical: %d, high: %d, medium: %d, low: %d\n",
		rep.Summary.HealthScore, rep.Summary.FilesChecked, rep.Summary.ChecksRun,
		rep.Summary.ErrorCount, rep.Summary.WarningCount, rep.Summary.ResourcesAnalyzed, rep.Summary.DuplicatesRemoved,
		rep.DataSource, len(rep.ActionPlan.Critical), len(rep.ActionPlan.High), len(rep.ActionPlan.Medium), len(rep.ActionPlan.Low),
	)
}
