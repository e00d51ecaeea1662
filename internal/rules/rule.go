package rules

import "strings"

// SupportedAny is the sentinel SupportedKinds value meaning "applies regardless of object kind".
const SupportedAny = "any"

// Meta is a rule's static description (spec §4.3: "code, name, default_severity, category,
// description, documentation_url, supported_kinds, parameters").
type Meta struct {
	Code             string
	Name             string
	DefaultSeverity  Severity
	Category         Category
	Description      string
	DocumentationURL string
	SupportedKinds   []string
	Fixable          bool
}

// SupportsKind reports whether this rule applies to the given object kind. An empty SupportedKinds
// list or a SupportedAny entry matches every kind; other entries match case-insensitively.
func (m Meta) SupportsKind(kind string) bool {
	if len(m.SupportedKinds) == 0 {
		return true
	}
	for _, k := range m.SupportedKinds {
		if k == SupportedAny || strings.EqualFold(k, kind) {
			return true
		}
	}
	return false
}

// Context is the input a Rule's Check runs against. Subject carries the family-specific parsed
// model (e.g. *yamlload.ComposeDocument, *kubelint.K8sObject, *helmlint.Chart); rules type-assert
// it to what they expect.
type Context struct {
	FilePath string
	Source   string
	Lines    []string
	Subject  interface{}
}

// NewContext builds a Context, splitting source into lines once up front for pragma scanning.
func NewContext(filePath, source string, subject interface{}) *Context {
	return &Context{
		FilePath: filePath,
		Source:   source,
		Lines:    strings.Split(source, "\n"),
		Subject:  subject,
	}
}

// Rule is a single check in the engine. Fix is optional: a rule that can't safely rewrite source
// simply doesn't implement Fixer.
type Rule interface {
	Meta() Meta
	Check(ctx *Context) []Diagnostic
}

// Fixer is implemented by rules whose Fix can rewrite source to resolve their own diagnostics.
type Fixer interface {
	Fix(source string) (string, bool)
}

// Registry collects a rule family's registered rules in registration order (spec §5's ordering
// guarantee ties stable output to this order).
type Registry struct {
	rules []Rule
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a rule to the registry.
func (r *Registry) Register(ru Rule) {
	r.rules = append(r.rules, ru)
}

// All returns the registered rules in registration order.
func (r *Registry) All() []Rule {
	return r.rules
}

// Run executes every registered rule against ctx, applies the framework's filtering order, and
// returns a finalized LintResult. Run does no kind-gating; ChecksRun counts the rules evaluated,
// which is the registry's size minus the rules in cfg.IgnoreRules.
func Run(ctx *Context, registry *Registry, cfg Config) LintResult {
	pragmas := ParsePragmas(ctx.Lines)
	var diags []Diagnostic
	checksRun := 0
	for _, ru := range registry.All() {
		meta := ru.Meta()
		if cfg.IgnoreRules[meta.Code] {
			continue
		}
		checksRun++
		diags = append(diags, ru.Check(ctx)...)
	}
	result := LintResult{
		Failures:     Filter(diags, cfg, pragmas),
		FilesChecked: 1,
		ChecksRun:    checksRun,
	}
	result.Finalize()
	return result
}

// NamedFixesFor collects the Fix functions of fixable rules present in diags, in registry order,
// for use with ApplyFixes.
func NamedFixesFor(registry *Registry, diags []Diagnostic) []NamedFix {
	present := map[string]bool{}
	for _, d := range diags {
		present[d.Code] = true
	}
	var fixes []NamedFix
	for _, ru := range registry.All() {
		fx, ok := ru.(Fixer)
		if !ok || !present[ru.Meta().Code] {
			continue
		}
		fixes = append(fixes, NamedFix{Code: ru.Meta().Code, Fix: fx.Fix})
	}
	return fixes
}
