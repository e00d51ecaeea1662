package helmlint

import (
	"fmt"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

func init() {
	register(unclosedActionRule{})
	register(unclosedBlockRule{})
	register(deprecatedFunctionRule{})
	register(missingNotesRule{})
	register(helperDocCommentRule{})
	register(unusedHelperRule{})
	register(undefinedIncludeRule{})
}

func templateSubject(ctx *rules.Context) *TemplateSubject {
	ts, _ := ctx.Subject.(*TemplateSubject)
	return ts
}

// deprecatedTemplateFunctions lists template identifiers retained for Helm 2/Tiller-era compat
// that carry no meaning under Helm 3's render pipeline; a lint hit here is almost always a
// copy-pasted chart that hasn't been updated.
var deprecatedTemplateFunctions = map[string]bool{
	"tillerVersion": true,
	"helmVersion":   true,
}

// HL3001: a scan-time TemplateError the scanner recovered from (an unmatched `end`, or an action or
// comment never closed by `}}`).
type unclosedActionRule struct{}

func (unclosedActionRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3001", Name: "unclosed-action", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryTemplate, Description: "template action is malformed or unmatched",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r unclosedActionRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, e := range ts.Template.Errors {
		diags = append(diags, rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			e.Message, ctx.FilePath, position.Position{Line: e.Line},
		))
	}
	return diags
}

// HL3002: an `if`/`range`/`with`/`define`/`block` left open at end of file — one diagnostic per
// unmatched frame (spec §4.5).
type unclosedBlockRule struct{}

func (unclosedBlockRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3002", Name: "unclosed-block", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryTemplate, Description: "template block was never closed with {{ end }}",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r unclosedBlockRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, b := range ts.Template.UnclosedBlocks {
		diags = append(diags, rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			fmt.Sprintf("unclosed {{ %s }} block", b.Kind), ctx.FilePath, position.Position{Line: b.Line},
		))
	}
	return diags
}

// HL3003: a bare function call matching the fixed deprecatedTemplateFunctions list.
type deprecatedFunctionRule struct{}

func (deprecatedFunctionRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3003", Name: "deprecated-function", DefaultSeverity: rules.SeverityWarning,
		Category: rules.CategoryTemplate, Description: "template calls a function retained only for Helm 2 compatibility",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r deprecatedFunctionRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, fn := range ts.Template.FunctionsSorted() {
		if deprecatedTemplateFunctions[fn] {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("function %q is deprecated", fn), ctx.FilePath, position.Position{},
			))
		}
	}
	return diags
}

// HL3004: a chart with templates but no NOTES.txt gives users no post-install guidance.
type missingNotesRule struct{}

func (missingNotesRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3004", Name: "missing-notes", DefaultSeverity: rules.SeverityInfo,
		Category: rules.CategoryBestPractice, Description: "chart has no templates/NOTES.txt",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r missingNotesRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	// Emit at most once per chart: only from the first template file in sorted order, so a
	// template-scoped rule can still report a chart-wide fact without duplicating per file.
	if ts == nil || ts.Chart.HasNotes || len(ts.Chart.Templates) == 0 || ts.Chart.Templates[0] != ts.Template {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		"chart has no templates/NOTES.txt", notesPath(ts.Chart.Dir), position.Position{},
	)}
}

// HL3005: a helper defined without a preceding `{{/* ... */}}` doc comment is hard to consume
// from other charts.
type helperDocCommentRule struct{}

func (helperDocCommentRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3005", Name: "helper-missing-doc-comment", DefaultSeverity: rules.SeverityStyle,
		Category: rules.CategoryStyle, Description: "helper has no doc comment",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r helperDocCommentRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, hf := range ts.Chart.HelperFiles {
		if hf.Path != ts.Template.Path {
			continue
		}
		for _, h := range hf.Helpers {
			if h.DocComment == "" {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("helper %q has no doc comment", h.Name), ctx.FilePath, position.Position{Line: h.Line},
				))
			}
		}
	}
	return diags
}

// HL3006: a helper defined but never named by include/template in any template file, helper files
// included, per the Chart.helperReferences index (spec §9). A helper referenced only from another
// unused helper still counts as referenced.
type unusedHelperRule struct{}

func (unusedHelperRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3006", Name: "unused-helper", DefaultSeverity: rules.SeverityInfo,
		Category: rules.CategoryBestPractice, Description: "helper is defined but never included",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r unusedHelperRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, hf := range ts.Chart.HelperFiles {
		if hf.Path != ts.Template.Path {
			continue
		}
		for _, h := range hf.Helpers {
			if !ts.Chart.helperReferences[h.Name] {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					fmt.Sprintf("helper %q is never included", h.Name), ctx.FilePath, position.Position{Line: h.Line},
				))
			}
		}
	}
	return diags
}

// HL3011: `include "name"`/`template "name"` referencing a helper not defined anywhere in the
// chart (spec §8 scenario 3).
type undefinedIncludeRule struct{}

func (undefinedIncludeRule) Meta() rules.Meta {
	return rules.Meta{
		Code: "HL3011", Name: "undefined-include", DefaultSeverity: rules.SeverityError,
		Category: rules.CategoryTemplate, Description: "include/template references an undefined helper",
		SupportedKinds: []string{KindTemplate},
	}
}

func (r undefinedIncludeRule) Check(ctx *rules.Context) []rules.Diagnostic {
	ts := templateSubject(ctx)
	if ts == nil {
		return nil
	}
	var diags []rules.Diagnostic
	for _, name := range ts.Template.ReferencedSorted() {
		if !ts.Chart.DefinesHelper(name) {
			diags = append(diags, rules.NewDiagnostic(
				r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
				fmt.Sprintf("include %q references an undefined helper", name), ctx.FilePath, position.Position{},
			))
		}
	}
	return diags
}

func notesPath(dir string) string {
	if dir == "" {
		return TemplatesDir + "/" + NotesFile
	}
	return dir + "/" + TemplatesDir + "/" + NotesFile
}
