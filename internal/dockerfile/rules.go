package dockerfile

import (
	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
)

var registry = rules.NewRegistry()

func register(r rules.Rule) {
	registry.Register(r)
}

// Registry returns the package-level Dockerfile rule registry.
func Registry() *rules.Registry { return registry }

func init() {
	register(consecutiveRunRule{})
	register(pipefailRule{})
	register(missingHealthcheckRule{})
}

// DL3059: multiple consecutive RUN instructions should be consolidated into one layer. Grounded on
// original_source/src/analyzer/hadolint/rules/dl3059.rs's stateful step function: a FROM resets
// the run-streak counter (new build stage), any non-RUN instruction resets it too, and every RUN
// past the first in a streak is flagged. This is the spec's own "stateful rule" illustration
// (spec §4.3: "carry running counters (e.g. consecutive RUN count for Dockerfile DL3059)").
type consecutiveRunRule struct{}

func (consecutiveRunRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DL3059",
		Name:            "multiple-consecutive-run",
		DefaultSeverity: rules.SeverityInfo,
		Category:        rules.CategoryStyle,
		Description:     "Multiple consecutive RUN instructions. Consider consolidation.",
	}
}

func (r consecutiveRunRule) Check(ctx *rules.Context) []rules.Diagnostic {
	df, ok := ctx.Subject.(*Dockerfile)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	consecutive := 0
	for _, instr := range df.Instructions {
		switch instr.Keyword {
		case "FROM":
			consecutive = 0
		case "RUN":
			consecutive++
			if consecutive >= 2 {
				diags = append(diags, rules.NewDiagnostic(
					r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
					r.Meta().Description, ctx.FilePath, position.Position{Line: instr.Line},
				))
			}
		default:
			consecutive = 0
		}
	}
	return diags
}

// DL4006: a RUN instruction with an unquoted pipe should set `SHELL ["...", "-o", "pipefail"]`
// first so a failing upstream command fails the whole pipeline, not just the last stage. Grounded
// on original_source/src/analyzer/hadolint/rules/dl4006.rs; like the original, SHELL-tracking
// across instructions is not modeled (the original's own comment: "In a real implementation, we'd
// track if SHELL with pipefail was set") — any RUN with an unquoted pipe is flagged.
type pipefailRule struct{}

func (pipefailRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DL4006",
		Name:            "set-pipefail-before-pipe",
		DefaultSeverity: rules.SeverityWarning,
		Category:        rules.CategoryBestPractice,
		Description:     "Set the SHELL option -o pipefail before RUN with a pipe in it",
	}
}

func (r pipefailRule) Check(ctx *rules.Context) []rules.Diagnostic {
	df, ok := ctx.Subject.(*Dockerfile)
	if !ok {
		return nil
	}
	var diags []rules.Diagnostic
	for _, instr := range df.Instructions {
		if instr.Keyword != "RUN" {
			continue
		}
		if !hasUnquotedPipe(instr.Args) {
			continue
		}
		diags = append(diags, rules.NewDiagnostic(
			r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
			r.Meta().Description, ctx.FilePath, position.Position{Line: instr.Line},
		))
	}
	return diags
}

// DL3057: an image with real instructions (not just FROM) should declare a HEALTHCHECK so an
// orchestrator can monitor container health. Grounded on
// original_source/src/analyzer/hadolint/rules/dl3057.rs's "very custom rule" (step + finalize) —
// the spec's own "finalizing rule" illustration (spec §4.3: "emits diagnostics only after all
// inputs have been visited (e.g. 'missing HEALTHCHECK')"). `HEALTHCHECK NONE` counts as present,
// matching the original: only the keyword is checked, not whether it disables the check.
type missingHealthcheckRule struct{}

func (missingHealthcheckRule) Meta() rules.Meta {
	return rules.Meta{
		Code:            "DL3057",
		Name:            "healthcheck-instruction-missing",
		DefaultSeverity: rules.SeverityInfo,
		Category:        rules.CategoryBestPractice,
		Description:     "HEALTHCHECK instruction missing.",
	}
}

func (r missingHealthcheckRule) Check(ctx *rules.Context) []rules.Diagnostic {
	df, ok := ctx.Subject.(*Dockerfile)
	if !ok {
		return nil
	}
	hasHealthcheck := false
	hasInstructions := false
	for _, instr := range df.Instructions {
		if instr.Keyword == "HEALTHCHECK" {
			hasHealthcheck = true
		}
		if instr.Keyword != "FROM" {
			hasInstructions = true
		}
	}
	if hasHealthcheck || !hasInstructions {
		return nil
	}
	return []rules.Diagnostic{rules.NewDiagnostic(
		r.Meta().Code, r.Meta().Name, r.Meta().DefaultSeverity, r.Meta().Category,
		r.Meta().Description, ctx.FilePath, position.Position{Line: 1},
	)}
}
