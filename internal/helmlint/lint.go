package helmlint

import (
	"path/filepath"

	"github.com/scoutflo/devlint/internal/rules"
)

var registry = rules.NewRegistry()

func register(r rules.Rule) { registry.Register(r) }

// Registry returns the package-level HL rule registry.
func Registry() *rules.Registry { return registry }

// SchemaMismatchCode is the reserved code for "recognized field, unexpected shape" diagnostics
// (spec §4.1/§7), parallel to DCL000/KL000.
const SchemaMismatchCode = "HL000"

// Rule-kind gates: chart-scoped rules (HL1xxx, structure/metadata) see the whole Chart as
// Subject; template-scoped rules (HL3xxx/HL4xxx/HL5xxx) run once per template file with a
// TemplateSubject, so pragma suppression and file attribution resolve against that template's
// own lines rather than Chart.yaml's.
const (
	KindChart    = "chart"
	KindTemplate = "template"
)

// Lint loads a chart directory and runs every registered HL rule against it: chart-scoped rules
// once over Chart.yaml, template-scoped rules once per file under templates/.
func Lint(dir string, cfg rules.Config) (rules.LintResult, error) {
	chart, err := Load(dir)
	if err != nil {
		return rules.LintResult{}, err
	}

	var diags []rules.Diagnostic
	checksRun := 0

	chartCtx := rules.NewContext(filepath.Join(dir, ChartYAML), chart.ChartYAMLRaw, chart)
	chartPragmas := rules.ParsePragmas(chartCtx.Lines)
	for _, ru := range registry.All() {
		meta := ru.Meta()
		if cfg.IgnoreRules[meta.Code] || !meta.SupportsKind(KindChart) {
			continue
		}
		checksRun++
		diags = append(diags, rules.Filter(ru.Check(chartCtx), cfg, chartPragmas)...)
	}

	for _, tpl := range chart.Templates {
		tplCtx := rules.NewContext(filepath.Join(dir, tpl.Path), tpl.RawContent, &TemplateSubject{Chart: chart, Template: tpl})
		tplPragmas := rules.ParsePragmas(tplCtx.Lines)
		for _, ru := range registry.All() {
			meta := ru.Meta()
			if cfg.IgnoreRules[meta.Code] || !meta.SupportsKind(KindTemplate) {
				continue
			}
			checksRun++
			diags = append(diags, rules.Filter(ru.Check(tplCtx), cfg, tplPragmas)...)
		}
	}

	result := rules.LintResult{
		Failures:     diags,
		FilesChecked: 1 + len(chart.Templates),
		ChecksRun:    checksRun,
	}
	result.Finalize()
	return result, nil
}
