// Package dcl implements the Docker Compose rule family (DCL): 15 rules over the
// position-preserving ComposeDocument model, sharing the common rule engine in internal/rules.
package dcl

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/scoutflo/devlint/internal/position"
	"github.com/scoutflo/devlint/internal/rules"
	"github.com/scoutflo/devlint/internal/yamlload"
)

// SchemaMismatchCode is the reserved code for "recognized field, unexpected shape" diagnostics
// (spec §4.1 "Failure semantics"), distinct from a structural ParseError.
const SchemaMismatchCode = "DCL000"

var registry = rules.NewRegistry()

func register(r rules.Rule) {
	registry.Register(r)
}

// Registry returns the package-level DCL rule registry, for callers that want to inspect or
// filter it (e.g. listing rule metadata for --help output).
func Registry() *rules.Registry { return registry }

// Lint parses source as a docker-compose document and runs every registered DCL rule against it.
func Lint(source, filePath string, cfg rules.Config) (rules.LintResult, error) {
	doc, err := yamlload.ParseCompose(source, filePath)
	if err != nil {
		return rules.LintResult{}, err
	}

	ctx := rules.NewContext(filePath, source, doc)
	mismatches := schemaMismatches(doc, filePath)

	result := rules.Run(ctx, registry, cfg)
	pragmas := rules.ParsePragmas(ctx.Lines)
	result.Failures = append(result.Failures, rules.Filter(mismatches, cfg, pragmas)...)
	result.Finalize()
	return result, nil
}

// Fix applies every fixable DCL rule's Fix function whose diagnostics are present in result, in
// registry order, and returns the rewritten source plus which rule codes changed something.
func Fix(source string, result rules.LintResult) (string, []string) {
	fixes := rules.NamedFixesFor(registry, result.Failures)
	return rules.ApplyFixes(source, fixes)
}

// schemaMismatches scans the parsed document's raw nodes for recognized-but-malformed shapes
// that yamlload tolerates structurally (e.g. `ports` given as a scalar instead of a sequence),
// emitting them as DCL000 diagnostics per spec §4.1.
func schemaMismatches(doc *yamlload.ComposeDocument, filePath string) []rules.Diagnostic {
	var diags []rules.Diagnostic
	for _, name := range doc.ServiceOrder {
		svc := doc.Services[name]
		if svc == nil || svc.Raw == nil {
			continue
		}
		if _, v, ok := yamlload.MapGet(svc.Raw, "ports"); ok {
			if v.Kind != 0 && v.Kind != yaml.SequenceNode && len(svc.Ports) == 0 {
				diags = append(diags, rules.NewDiagnostic(
					SchemaMismatchCode, "compose-schema-mismatch", rules.SeverityWarning, rules.CategoryStructure,
					fmt.Sprintf("service %q: field \"ports\" expected a sequence, got a different shape", name),
					filePath, position.Position{Line: v.Line, Column: v.Column},
				))
			}
		}
	}
	return diags
}
