package kubelint

import "github.com/scoutflo/devlint/internal/rules"

// Lint decodes a manifest file and runs every registered template against each object it
// contains, gating each template by its SupportedKinds before evaluating it.
func Lint(file, source string, cfg rules.Config) (rules.LintResult, error) {
	objects, err := DecodeObjects(file, source)
	if err != nil {
		return rules.LintResult{}, err
	}

	pragmas := rules.ParsePragmas(rules.NewContext(file, source, nil).Lines)
	var diags []rules.Diagnostic
	checksRun := 0
	for _, obj := range objects {
		for _, ru := range registry.All() {
			meta := ru.Meta()
			if cfg.IgnoreRules[meta.Code] {
				continue
			}
			if !meta.SupportsKind(string(obj.Kind)) {
				continue
			}
			checksRun++
			diags = append(diags, ru.Check(rules.NewContext(file, source, obj))...)
		}
	}

	result := rules.LintResult{
		Failures:     rules.Filter(diags, cfg, pragmas),
		FilesChecked: len(objects),
		ChecksRun:    checksRun,
	}
	result.Finalize()
	return result, nil
}
