package helmlint

import (
	"regexp"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

// HL4xxx rules run on template *source* rather than a rendered object (spec §4.5): the chart
// hasn't been rendered against real values at lint time, so these are literal-text checks for the
// most common copy-pasted security anti-patterns, not a substitute for kubelint's post-render
// checks over the same concerns.

func init() {
	register(literalPrivilegedRule{})
	register(literalHostNetworkRule{})
	register(literalLatestTagRule{})
}

var privilegedTruePattern = regexp.MustCompile(`(?m)^\s*privileged:\s*true\s*$`)
var hostNetworkTruePattern = regexp.MustCompile(`(?m)^\s*hostNetwork:\s*true\s*$`)
var literalLatestTagPattern = regexp.MustCompile(`(?m)^\s*image:\s*.+:latest\s*$`)

func lineOf(text string, loc []int) int {
	if loc == nil {
		return 0
	}
	line := 1
	for i := 0; i < loc[0] && i < len(text); i++ {
		if text[i] == '\n' {
			line++
		}
	}
	return line
}

// HL4001: a hardcoded `privileged: true` in template source, independent of what .Values supplies
// elsewhere — if it's literal, no value override can turn it off.
type literalPrivilegedRule struct{}

func (literalPrivilegedRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL4001", Name: "literal-privileged", DefaultSeverity: rules.SeverityError,
		Category: rules.CategorySecurity, Description: "template hardcodes privileged: true",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r literalPrivilegedRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, loc := range privilegedTruePattern.FindAllStringIndex(ts.Template.RawContent, -1) {
		diags = append(diags, withHLRemediation(rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			"template hardcodes privileged: true", ctx.FilePath, position.Position{Line: lineOf(ts.Template.RawContent, loc)},
		), "expose privileged via a .Values flag defaulting to false"))
	}
	return diags
}

// HL4002: a hardcoded `hostNetwork: true`.
type literalHostNetworkRule struct{}

func (literalHostNetworkRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL4002", Name: "literal-host-network", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategorySecurity, Description: "template hardcodes hostNetwork: true",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r literalHostNetworkRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, loc := range hostNetworkTruePattern.FindAllStringIndex(ts.Template.RawContent, -1) {
		diags = append(diags, withHLRemediation(rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			"template hardcodes hostNetwork: true", ctx.FilePath, position.Position{Line: lineOf(ts.Template.RawContent, loc)},
		), "expose hostNetwork via a .Values flag defaulting to false"))
	}
	return diags
}

// HL4003: a literal `:latest` image tag baked into the template, not parameterized by .Values.
type literalLatestTagRule struct{}

func (literalLatestTagRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL4003", Name: "literal-latest-tag", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategorySecurity, Description: "template hardcodes an image pinned to :latest",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r literalLatestTagRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, loc := range literalLatestTagPattern.FindAllStringIndex(ts.Template.RawContent, -1) {
		diags = append(diags, withHLRemediation(rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			"template hardcodes an image pinned to :latest", ctx.FilePath, position.Position{Line: lineOf(ts.Template.RawContent, loc)},
		), "parameterize the image tag via .Values.image.tag"))
	}
	return diags
}

func withHLRemediation(d rules.Diagnostic, remediation string) rules.Diagnostic {
	d.Remediation = remediation
	return d
}
