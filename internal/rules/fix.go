package rules

// FixFunc rewrites source text to eliminate a specific rule's diagnostics, or reports no change.
// Implementations must be idempotent: calling Fix on already-conformant source must return
// (source, false).
type FixFunc func(source string) (fixed string, changed bool)

// NamedFix pairs a rule code with its fix function, in the order fixes should be applied.
type NamedFix struct {
	Code string
	Fix  FixFunc
}

// ApplyFixes runs each fix in order, feeding one fix's output into the next's input, and reports
// which rule codes actually changed the source (spec §4.3: "the framework applies fixes
// sequentially... and reports which rules produced changes").
func ApplyFixes(source string, fixes []NamedFix) (result string, changedBy []string) {
	result = source
	for _, nf := range fixes {
		next, changed := nf.Fix(result)
		if changed {
			result = next
			changedBy = append(changedBy, nf.Code)
		}
	}
	return result, changedBy
}
