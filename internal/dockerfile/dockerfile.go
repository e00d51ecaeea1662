package dockerfile

import "github.com/scoutflo/devlint/internal/rules"

// Lint parses source as a Dockerfile and runs every registered DL rule against it.
func Lint(source, filePath string, cfg rules.Config) (rules.LintResult, error) {
	df := Parse(source)
	ctx := rules.NewContext(filePath, source, df)
	result := rules.Run(ctx, registry, cfg)
	return result, nil
}
