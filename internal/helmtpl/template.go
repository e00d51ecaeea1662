// Package helmtpl sub-parses Helm chart templates without executing them: it lexes the
// `{{ ... }}` actions embedded in a template file, tracks block nesting, and records which
// variables, functions, and other templates each file touches (spec §4.2). Helm's own template
// engine renders against real values, which a static linter never has at analysis time, so this
// is a deliberately shallow scan rather than a `text/template` execution.
package helmtpl

import "fmt"

// BlockKind enumerates the block-opening actions that must be matched by an `end`.
type BlockKind string

const (
	BlockIf     BlockKind = "If"
	BlockRange  BlockKind = "Range"
	BlockWith   BlockKind = "With"
	BlockDefine BlockKind = "Define"
	BlockBlock  BlockKind = "Block"
)

// UnclosedBlock is one frame still open when the template ran out of input.
type UnclosedBlock struct {
	Kind BlockKind
	Line int
}

// TemplateError is a recoverable scan-time defect (an unmatched `end`, a malformed action) that
// doesn't stop the scan but is worth surfacing as an HL3xxx diagnostic.
type TemplateError struct {
	Line    int
	Message string
}

func (e TemplateError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Template is the result of sub-parsing one chart template file.
type Template struct {
	Path               string
	RawContent         string
	ReferencedTemplates map[string]bool
	VariablesUsed       map[string]bool
	FunctionsCalled     map[string]bool
	UnclosedBlocks      []UnclosedBlock
	Errors              []TemplateError

	// DefinedNames collects the names registered by `define`/`block` actions in this file, used
	// by internal/helmlint to build the cross-file helper arena.
	DefinedNames []string
}

func newTemplate(path, text string) *Template {
	return &Template{
		Path:                path,
		RawContent:          text,
		ReferencedTemplates: map[string]bool{},
		VariablesUsed:       map[string]bool{},
		FunctionsCalled:     map[string]bool{},
	}
}

// ReferencedSorted returns the referenced template names in sorted order, for deterministic
// diagnostic output.
func (t *Template) ReferencedSorted() []string { return sortedKeys(t.ReferencedTemplates) }

// VariablesSorted returns the used `.Values.*` paths in sorted order.
func (t *Template) VariablesSorted() []string { return sortedKeys(t.VariablesUsed) }

// FunctionsSorted returns the called function names in sorted order.
func (t *Template) FunctionsSorted() []string { return sortedKeys(t.FunctionsCalled) }
