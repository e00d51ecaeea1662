package helmlint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/scoutflo/devlint/internal/rules"
)

func init() {
	register(chartYAMLPresentRule{})
	register(apiVersionValidRule{})
	register(nameNonEmptyRule{})
	register(versionSemverValidRule{})
	register(NewChartNameRegexRule(DefaultChartNamePattern))
	register(maintainersPresentRule{})
	register(deprecatedFlagRule{})
	register(homeIconHTTPSRule{})
	register(templatesDirPresentRule{})
	register(valuesYAMLPresentRule{})
	register(dependencyNamesUniqueRule{})
	register(dependencyFieldsPresentRule{})
}

// DefaultChartNamePattern is HL1005's default chart-name pattern, mirroring DCL009's shape.
var DefaultChartNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

func chartMeta(ctx *rules.Context) *Chart {
	c, _ := ctx.Subject.(*Chart)
	return c
}

// HL1001: a chart directory with no Chart.yaml can't be installed at all.
type chartYAMLPresentRule struct{}

func (chartYAMLPresentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1001", Name: "chart-yaml-present", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "chart directory has no Chart.yaml",
		SupportedKinds: []string{KindChart},
	}
}

func (r chartYAMLPresentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || c.HasChartYAML {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"chart directory has no Chart.yaml", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1002: apiVersion must be v1 or v2 for validation to succeed (spec §3, §8 boundary case).
type apiVersionValidRule struct{}

func (apiVersionValidRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1002", Name: "api-version-valid", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "Chart.yaml apiVersion must be v1 or v2",
		SupportedKinds: []string{KindChart},
	}
}

func (r apiVersionValidRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || !c.HasChartYAML || c.Metadata.APIVersion != APIVersionUnknown {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		fmt.Sprintf("apiVersion %q is neither v1 nor v2", c.Metadata.APIVersionRaw),
		ctx.FilePath, c.Metadata.APIVersionPos,
	)}
}

// HL1003: name is required for a chart to be addressable by `helm install`.
type nameNonEmptyRule struct{}

func (nameNonEmptyRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1003", Name: "name-non-empty", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "Chart.yaml name is empty",
		SupportedKinds: []string{KindChart},
	}
}

func (r nameNonEmptyRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || !c.HasChartYAML || c.Metadata.Name != "" {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"Chart.yaml name is empty", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1004: version must be a valid SemVer (X.Y.Z with optional -pre/+build).
type versionSemverValidRule struct{}

func (versionSemverValidRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1004", Name: "version-semver-valid", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "Chart.yaml version is not a valid SemVer",
		SupportedKinds: []string{KindChart},
	}
}

func (r versionSemverValidRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || !c.HasChartYAML {
		return nil
	}
	if c.Metadata.Version == "" {
		return []rules.Diagnostic{rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			"Chart.yaml version is empty", ctx.FilePath, c.Metadata.Position,
		)}
	}
	if _, err := semver.StrictNewVersion(c.Metadata.Version); err != nil {
		return []rules.Diagnostic{rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			fmt.Sprintf("version %q is not a valid SemVer: %s", c.Metadata.Version, err),
			ctx.FilePath, c.Metadata.VersionPos,
		)}
	}
	return nil
}

// HL1005: chart-name-regex, default pattern `^[a-z][a-z0-9-]*$` (spec §4.5), overridable.
type chartNameRegexRule struct{ pattern *regexp.Regexp }

// NewChartNameRegexRule builds HL1005 with a caller-supplied pattern override.
func NewChartNameRegexRule(pattern *regexp.Regexp) rules.Rule {
	return chartNameRegexRule{pattern: pattern}
}

func (chartNameRegexRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1005", Name: "chart-name-regex", DefaultSeverity: rules.SeverityStyle,
		Category: rules.CategoryStyle, Description: "chart name should match the configured naming pattern",
		SupportedKinds: []string{KindChart},
	}
}

func (r chartNameRegexRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || c.Metadata.Name == "" || r.pattern.MatchString(c.Metadata.Name) {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		fmt.Sprintf("chart name %q does not match pattern %s", c.Metadata.Name, r.pattern.String()),
		ctx.FilePath, c.Metadata.NamePos,
	)}
}

// HL1006: a chart with no maintainers listed gives downstream users no one to contact.
type maintainersPresentRule struct{}

func (maintainersPresentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1006", Name: "maintainers-present", DefaultSeverity: rules.SeverityInfo,
		Category: rules.CategoryBestPractice, Description: "Chart.yaml has no maintainers listed",
		SupportedKinds: []string{KindChart},
	}
}

func (r maintainersPresentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || !c.HasChartYAML || len(c.Metadata.Maintainers) > 0 {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"Chart.yaml has no maintainers listed", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1007: a deprecated chart with no description leaves users no path to a replacement.
type deprecatedFlagRule struct{}

func (deprecatedFlagRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1007", Name: "deprecated-needs-description", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategoryBestPractice, Description: "deprecated chart has no description pointing to a replacement",
		SupportedKinds: []string{KindChart},
	}
}

func (r deprecatedFlagRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || !c.Metadata.Deprecated || c.Metadata.Description != "" {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"chart is deprecated but description doesn't say what replaces it", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1008: home/icon URLs should use HTTPS.
type homeIconHTTPSRule struct{}

func (homeIconHTTPSRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1008", Name: "home-icon-https", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategoryBestPractice, Description: "home/icon URL is not HTTPS",
		SupportedKinds: []string{KindChart},
	}
}

func (r homeIconHTTPSRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil {
		return nil
	}
	var diags []rules.Diagnostic
	if c.Metadata.Home != "" && !strings.HasPrefix(c.Metadata.Home, "https://") {
		diags = append(diags, rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			fmt.Sprintf("home %q is not an HTTPS URL", c.Metadata.Home), ctx.FilePath, c.Metadata.HomePos,
		))
	}
	if c.Metadata.Icon != "" && !strings.HasPrefix(c.Metadata.Icon, "https://") {
		diags = append(diags, rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			fmt.Sprintf("icon %q is not an HTTPS URL", c.Metadata.Icon), ctx.FilePath, c.Metadata.IconPos,
		))
	}
	return diags
}

// HL1009: templates/ must exist, except for library charts, which may ship helpers only (spec §8
// boundary case: "Helm chart with no templates and type: library → HL1009 suppressed").
type templatesDirPresentRule struct{}

func (templatesDirPresentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1009", Name: "templates-dir-present", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "chart has no templates/ directory",
		SupportedKinds: []string{KindChart},
	}
}

func (r templatesDirPresentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || c.HasTemplatesDir || c.Metadata.Type == TypeLibrary {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"chart has no templates/ directory", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1010: values.yaml is conventionally required even for charts with no values referenced.
type valuesYAMLPresentRule struct{}

func (valuesYAMLPresentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1010", Name: "values-yaml-present", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategoryStructure, Description: "chart has no values.yaml",
		SupportedKinds: []string{KindChart},
	}
}

func (r valuesYAMLPresentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil || c.HasValuesYAML {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"chart has no values.yaml", ctx.FilePath, c.Metadata.Position,
	)}
}

// HL1011: dependency names must be unique (spec §3 invariant).
type dependencyNamesUniqueRule struct{}

func (dependencyNamesUniqueRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1011", Name: "dependency-names-unique", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "Chart.yaml dependencies list duplicate names",
		SupportedKinds: []string{KindChart},
	}
}

func (r dependencyNamesUniqueRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil {
		return nil
	}
	seen := map[string]bool{}
	var diags []rules.Diagnostic
	for _, dep := range c.Metadata.Dependencies {
		if dep.Name == "" {
			continue
		}
		if seen[dep.Name] {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("dependency %q is declared more than once", dep.Name), ctx.FilePath, dep.Position,
			))
		}
		seen[dep.Name] = true
	}
	return diags
}

// HL1012: each dependency must declare a version and a repository.
type dependencyFieldsPresentRule struct{}

func (dependencyFieldsPresentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL1012", Name: "dependency-fields-present", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryStructure, Description: "chart dependency is missing version or repository",
		SupportedKinds: []string{KindChart},
	}
}

func (r dependencyFieldsPresentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	c := chartMeta(ctx)
	if c == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, dep := range c.Metadata.Dependencies {
		if dep.Version == "" {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("dependency %q has no version constraint", dep.Name), ctx.FilePath, dep.Position,
			))
		}
		if dep.Repository == "" {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("dependency %q has no repository", dep.Name), ctx.FilePath, dep.Position,
			))
		}
	}
	return diags
}
