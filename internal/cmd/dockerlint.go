package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/scoutflo/devlint/internal/dockerfile"
)

// newDockerlintCmd wires the DL-rule family (internal/dockerfile) onto the shared rule engine, the
// same way newDclintCmd wires DCL. It is a supplement beyond spec.md's three named linters,
// grounded on original_source/src/analyzer/hadolint/* — the spec's own rule-framework examples
// (DL3059, "missing HEALTHCHECK") describe exactly this rule family (see SPEC_FULL.md §5).
func newDockerlintCmd() *cobra.Command {
	var content, ignore, threshold, format, output string
	var noFail bool

	cmd := &cobra.Command{
		Use:   "dockerlint [path]",
		Short: "Lint a Dockerfile (rule family DL)",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			source, filePath, err := readSource(path, content)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
				exitCode = exitInvalidArgs
				return
			}

			cfg, cfgErr := buildConfig(splitCSV(ignore), threshold, false, noFail)
			if cfgErr != nil {
				exitCode = fatalConfigError(cmd, cfgErr)
				return
			}

			result, lintErr := dockerfile.Lint(source, filePath, cfg)
			if lintErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), lintErr)
				exitCode = exitParseError
				return
			}

			exitCode = renderAndExit(cmd, result, cfg, format, output, "dockerlint")
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Inline Dockerfile contents instead of a file path")
	cmd.Flags().StringVar(&ignore, "ignore", "", "Comma-separated rule codes to ignore")
	cmd.Flags().StringVar(&threshold, "threshold", "", "Minimum severity to report (error|warning|info|style)")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "Always exit 0 regardless of findings")
	cmd.Flags().StringVar(&format, "format", "table", "Output format (table|json|sarif|checkstyle|codeclimate|gcc)")
	cmd.Flags().StringVar(&output, "output", "", "Write report to a file instead of stdout")
	return cmd
}
